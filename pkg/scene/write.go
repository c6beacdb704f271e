package scene

import (
	"bytes"
	"io"
	"strings"
)

// Declaration is the XML declaration written at the top of every document.
const Declaration = `<?xml version="1.0"?>`

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\r", "&#13;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\n", "&#10;",
		"\r", "&#13;",
		"\t", "&#9;",
	)
)

// WriteTo serializes the document as UTF-8 XML.
//
// The output starts with [Declaration] on its own line, places every
// top-level node on its own line and ends with a newline. Elements without
// children are self-closed.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString(Declaration)
	buf.WriteByte('\n')
	for _, n := range d.Nodes {
		writeNode(&buf, n)
		buf.WriteByte('\n')
	}
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// Bytes serializes the document into a new slice.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = d.WriteTo(&buf)
	return buf.Bytes()
}

func writeNode(buf *bytes.Buffer, n Node) {
	switch t := n.(type) {
	case *Element:
		writeElement(buf, t)
	case CharData:
		textEscaper.WriteString(buf, string(t))
	case Comment:
		buf.WriteString("<!--")
		buf.WriteString(string(t))
		buf.WriteString("-->")
	case ProcInst:
		buf.WriteString("<?")
		buf.WriteString(t.Target)
		if t.Inst != "" {
			buf.WriteByte(' ')
			buf.WriteString(t.Inst)
		}
		buf.WriteString("?>")
	case Directive:
		buf.WriteString("<!")
		buf.WriteString(string(t))
		buf.WriteByte('>')
	}
}

func writeElement(buf *bytes.Buffer, el *Element) {
	name := qualified(el.Name)
	buf.WriteByte('<')
	buf.WriteString(name)
	for _, a := range el.Attrs {
		buf.WriteByte(' ')
		buf.WriteString(qualified(a.Name))
		buf.WriteString(`="`)
		attrEscaper.WriteString(buf, a.Value)
		buf.WriteByte('"')
	}
	if len(el.Children) == 0 {
		buf.WriteString("/>")
		return
	}
	buf.WriteByte('>')
	for _, c := range el.Children {
		writeNode(buf, c)
	}
	buf.WriteString("</")
	buf.WriteString(name)
	buf.WriteByte('>')
}

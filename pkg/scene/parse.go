package scene

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/matzehuels/flamesplit/pkg/errors"
)

// Parse reads a scene document from r.
//
// Names and attributes are kept with their raw prefixes. Whitespace outside
// the document element is dropped, as is the XML declaration; [Document.WriteTo]
// emits its own. Documents declaring a non-UTF-8 encoding are transcoded.
//
// Any syntax error, a missing or duplicated document element, or stray text at
// the top level returns an *errors.Error with code INVALID_DOCUMENT.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	doc := &Document{}
	var stack []*Element
	roots := 0

	add := func(n Node) {
		if len(stack) == 0 {
			doc.Nodes = append(doc.Nodes, n)
			return
		}
		top := stack[len(stack)-1]
		top.Children = append(top.Children, n)
	}

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "malformed scene document")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 {
				roots++
				if roots > 1 {
					return nil, errors.New(errors.ErrCodeInvalidDocument, "more than one document element (found <%s>)", qualified(t.Name))
				}
			}
			el := &Element{Name: t.Name, Attrs: append([]xml.Attr(nil), t.Attr...)}
			add(el)
			stack = append(stack, el)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errors.New(errors.ErrCodeInvalidDocument, "unexpected closing tag </%s>", qualified(t.Name))
			}
			top := stack[len(stack)-1]
			if top.Name != t.Name {
				return nil, errors.New(errors.ErrCodeInvalidDocument, "closing tag </%s> does not match <%s>", qualified(t.Name), qualified(top.Name))
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, errors.New(errors.ErrCodeInvalidDocument, "text outside the document element")
				}
				continue
			}
			add(CharData(t))

		case xml.Comment:
			add(Comment(t))

		case xml.ProcInst:
			if t.Target == "xml" {
				continue
			}
			add(ProcInst{Target: t.Target, Inst: string(t.Inst)})

		case xml.Directive:
			add(Directive(t))
		}
	}

	if len(stack) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "unexpected end of document inside <%s>", qualified(stack[len(stack)-1].Name))
	}
	if roots == 0 {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "document has no root element")
	}
	return doc, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

// qualified renders a raw name as prefix:local.
func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

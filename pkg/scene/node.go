package scene

import "encoding/xml"

// FlameTag is the local name of the element that describes one flame.
const FlameTag = "flame"

// Node is one node of a scene tree.
//
// Nodes are treated as immutable once built; helpers that change a node return
// a modified copy.
type Node interface {
	node()
}

// Element is an XML element. Name.Space holds the raw prefix, not a resolved
// namespace URL, so names are written back exactly as they were read.
type Element struct {
	Name     xml.Name
	Attrs    []xml.Attr
	Children []Node
}

// CharData is text content, stored unescaped.
type CharData string

// Comment is the text between <!-- and -->.
type Comment string

// ProcInst is a processing instruction such as <?xml-stylesheet ...?>.
type ProcInst struct {
	Target string
	Inst   string
}

// Directive is the text between <! and >, such as a DOCTYPE.
type Directive string

func (*Element) node() {}
func (CharData) node()  {}
func (Comment) node()   {}
func (ProcInst) node()  {}
func (Directive) node() {}

// Document is a parsed scene.
type Document struct {
	// Nodes are the top-level nodes in document order, including the root element.
	Nodes []Node
}

// Root returns the document element, or nil if the document has none.
func (d *Document) Root() *Element {
	for _, n := range d.Nodes {
		if el, ok := n.(*Element); ok {
			return el
		}
	}
	return nil
}

// Flames returns every flame element in document order.
// Flames nested inside another flame are not returned, matching how they are split.
func (d *Document) Flames() []*Element {
	var out []*Element
	var walk func(nodes []Node)
	walk = func(nodes []Node) {
		for _, n := range nodes {
			el, ok := n.(*Element)
			if !ok {
				continue
			}
			if el.IsFlame() {
				out = append(out, el)
				continue
			}
			walk(el.Children)
		}
	}
	walk(d.Nodes)
	return out
}

// IsFlame reports whether el is an unprefixed <flame> element.
func (el *Element) IsFlame() bool {
	return el != nil && el.Name.Space == "" && el.Name.Local == FlameTag
}

// Attr returns the value of the unprefixed attribute name.
func (el *Element) Attr(name string) (string, bool) {
	if el == nil {
		return "", false
	}
	for _, a := range el.Attrs {
		if a.Name.Space == "" && a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// WithAttrs returns a shallow copy of el with the given attributes set.
// Existing attributes keep their position; new ones are appended in the
// order given. Children are shared with el.
func (el *Element) WithAttrs(attrs ...xml.Attr) *Element {
	out := &Element{
		Name:     el.Name,
		Attrs:    make([]xml.Attr, len(el.Attrs), len(el.Attrs)+len(attrs)),
		Children: el.Children,
	}
	copy(out.Attrs, el.Attrs)

	for _, a := range attrs {
		replaced := false
		for i := range out.Attrs {
			if out.Attrs[i].Name == a.Name {
				out.Attrs[i].Value = a.Value
				replaced = true
				break
			}
		}
		if !replaced {
			out.Attrs = append(out.Attrs, a)
		}
	}
	return out
}

// attr builds an unprefixed attribute.
func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

package scene

import (
	"github.com/matzehuels/flamesplit/pkg/flame"
	"github.com/matzehuels/flamesplit/pkg/tile"
)

// SplitFunc computes the tiles for one flame element. index is the flame's
// position among all flames in the document. Returning an error skips the
// flame.
type SplitFunc func(index int, el *Element) ([]tile.Transform, error)

// Skipped records a flame that was left unsplit.
type Skipped struct {
	Index int    // Position among all flames in the document
	Name  string // Value of the name attribute, possibly empty
	Err   error
}

// Report summarizes an assembly.
type Report struct {
	Flames  int // Flames found in the source
	Split   int // Flames replaced by tiles
	Tiles   int // Tile flames written
	Skipped []Skipped
}

// Assemble builds a new document from src in which every flame is replaced,
// in place, by one clone per tile returned by split. Clones carry every
// attribute and child of the source flame; only name, center and scale are
// overwritten. Flames for which split fails are kept unchanged and reported.
//
// src is not modified. Subtrees without flames are shared between src and
// the result.
func Assemble(src *Document, split SplitFunc) (*Document, Report) {
	a := assembler{split: split}
	nodes, _ := a.nodes(src.Nodes)
	out := &Document{Nodes: nodes}
	return out, a.report
}

// Tile returns a clone of el carrying the viewport of t.
func Tile(el *Element, t tile.Transform) *Element {
	return el.WithAttrs(
		attr(flame.AttrName, t.Name),
		attr(flame.AttrCenter, FormatPair(t.CenterX, t.CenterY)),
		attr(flame.AttrScale, FormatNumber(t.Scale)),
	)
}

type assembler struct {
	split  SplitFunc
	report Report
}

// nodes rewrites a child list and reports whether anything below it changed.
// Unchanged lists are returned as-is.
func (a *assembler) nodes(in []Node) ([]Node, bool) {
	var out []Node
	changed := false

	for i, n := range in {
		repl, ok := a.node(n)
		if !ok && !changed {
			continue
		}
		if !changed {
			changed = true
			out = make([]Node, 0, len(in)+len(repl))
			out = append(out, in[:i]...)
		}
		if ok {
			out = append(out, repl...)
		} else {
			out = append(out, n)
		}
	}

	if !changed {
		return in, false
	}
	return out, true
}

// node returns the replacement for n and whether it differs from n.
func (a *assembler) node(n Node) ([]Node, bool) {
	el, ok := n.(*Element)
	if !ok {
		return nil, false
	}

	if !el.IsFlame() {
		children, changed := a.nodes(el.Children)
		if !changed {
			return nil, false
		}
		return []Node{&Element{Name: el.Name, Attrs: el.Attrs, Children: children}}, true
	}

	index := a.report.Flames
	a.report.Flames++

	tiles, err := a.split(index, el)
	if err != nil {
		name, _ := el.Attr(flame.AttrName)
		a.report.Skipped = append(a.report.Skipped, Skipped{Index: index, Name: name, Err: err})
		return nil, false
	}

	out := make([]Node, len(tiles))
	for i, t := range tiles {
		out[i] = Tile(el, t)
	}
	a.report.Split++
	a.report.Tiles += len(tiles)
	return out, true
}

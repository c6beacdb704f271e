// Package scene loads, assembles and writes fractal-flame scene documents.
//
// A scene is an XML document holding one or more <flame> elements, usually
// wrapped in a <flames> container. The package keeps the document as an
// immutable node tree so unrelated elements, comments, processing
// instructions and attribute order survive a split untouched.
//
// # Loading and Writing
//
//	doc, err := scene.Parse(r)
//	if err != nil {
//	    // errors.Is(err, errors.ErrCodeInvalidDocument)
//	}
//	var buf bytes.Buffer
//	_, err = doc.WriteTo(&buf)
//	out := scene.Normalize(buf.Bytes())
//
// [Normalize] applies the two textual accommodations the Apophysis family of
// editors expects: a newline after every </flame> and no XML declaration.
//
// # Assembling
//
// [Assemble] walks the source tree in document order and replaces every flame
// with the tiles returned by a [SplitFunc]. The source document is never
// modified; the result is a fresh tree that shares untouched subtrees with the
// source.
package scene

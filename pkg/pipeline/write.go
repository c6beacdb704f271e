package pipeline

import (
	"github.com/matzehuels/flamesplit/pkg/scene"
)

// Write serializes doc and applies the fix-ups flame editors expect: a line
// break after every closing flame tag and no XML declaration line.
func Write(doc *scene.Document) []byte {
	return scene.Normalize(doc.Bytes())
}

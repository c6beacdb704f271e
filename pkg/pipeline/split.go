package pipeline

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/flamesplit/pkg/flame"
	"github.com/matzehuels/flamesplit/pkg/scene"
	"github.com/matzehuels/flamesplit/pkg/tile"
)

// Load parses an uploaded scene.
func Load(data []byte) (*scene.Document, error) {
	return scene.Parse(bytes.NewReader(data))
}

// SplitScene replaces every flame of doc with its tile grid. Flames whose
// viewport cannot be read or tiled are kept as they are and listed in the
// report. doc itself is left untouched.
func SplitScene(doc *scene.Document, cfg tile.SplitConfig, policy flame.Policy) (*scene.Document, scene.Report) {
	return scene.Assemble(doc, Splitter(cfg.Format(), policy))
}

// Splitter returns the per-flame split function used by SplitScene.
func Splitter(format int, policy flame.Policy) scene.SplitFunc {
	return func(_ int, el *scene.Element) ([]tile.Transform, error) {
		p, err := flame.Extract(el, policy)
		if err != nil {
			return nil, err
		}
		ts := tile.Split(p, format)
		if !tile.Finite(ts) {
			return nil, fmt.Errorf("%w: tile values overflow", flame.ErrDegenerate)
		}
		return ts, nil
	}
}

// skippedFlames converts the assembler's report entries.
func skippedFlames(in []scene.Skipped) []SkippedFlame {
	if len(in) == 0 {
		return nil
	}
	out := make([]SkippedFlame, len(in))
	for i, s := range in {
		out[i] = SkippedFlame{Index: s.Index, Name: s.Name, Reason: s.Err.Error()}
	}
	return out
}

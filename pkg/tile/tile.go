// Package tile computes the viewports that split a flame into a grid of tiles.
//
// A split at level L produces a format×format grid with format = 2^L. Each
// tile keeps the original flame's pixel size but magnifies it format times, so
// rendering every tile and stitching the results reproduces the original image
// at format times its linear resolution.
//
// The per-tile displacement vectors are expressed in the flame's own rotated
// frame, which is what keeps the mosaic aligned for rotated and non-square
// flames:
//
//	sf      = (1/scale) * width / format / 2^zoom
//	offsetX = ( sf*cos r, -sf*sin r)
//	offsetY = ( sf*ar*sin r,  sf*ar*cos r)       ar = height/width
//
// Tile (x, y) is centered at center + (x-t)*offsetX + (y-t)*offsetY where
// t = format/2 - 0.5 puts the grid symmetrically around the original center.
package tile

import (
	"math"
	"strconv"

	"github.com/matzehuels/flamesplit/pkg/flame"
)

const (
	// MinLevel is the smallest split level; there is no no-op split.
	MinLevel = 1

	// DefaultMaxLevel bounds the level unless configured otherwise (16x16 tiles).
	DefaultMaxLevel = 4

	// LevelCeiling is the largest max level a configuration may choose (256x256 tiles).
	LevelCeiling = 8
)

// SplitConfig is a clamped split level.
type SplitConfig struct {
	Level int
}

// NewSplitConfig clamps level into [MinLevel, maxLevel]. A maxLevel below
// MinLevel is treated as MinLevel.
func NewSplitConfig(level, maxLevel int) SplitConfig {
	if maxLevel < MinLevel {
		maxLevel = MinLevel
	}
	return SplitConfig{Level: min(maxLevel, max(MinLevel, level))}
}

// Format returns the number of tiles per axis, 2^Level.
func (c SplitConfig) Format() int { return 1 << c.Level }

// TileCount returns Format()².
func (c SplitConfig) TileCount() int { return c.Format() * c.Format() }

// Label returns the grid label, e.g. "4x4".
func (c SplitConfig) Label() string {
	f := strconv.Itoa(c.Format())
	return f + "x" + f
}

// Coord identifies one tile of the grid.
type Coord struct {
	X, Y int
}

// CoordAt maps a row-major tile index to its coordinate.
func CoordAt(i, format int) Coord {
	return Coord{X: i % format, Y: i / format}
}

// Transform is the viewport of one tile.
type Transform struct {
	Coord
	Name    string
	CenterX float64
	CenterY float64
	Scale   float64
}

// Basis holds the vectors that place tiles around the original center.
type Basis struct {
	OffsetX    [2]float64 // Displacement of one tile step along the image x axis
	OffsetY    [2]float64 // Displacement of one tile step along the image y axis
	TileOffset float64    // Tiles between the grid edge and the original center, minus half a tile
}

// NewBasis computes the tile basis for p split into format tiles per axis.
func NewBasis(p flame.Params, format int) Basis {
	ar := p.AspectRatio()
	sf := 1 / p.Scale * float64(p.Width) / float64(format) / p.ZoomFactor()
	sin, cos := math.Sincos(p.Rotate)

	return Basis{
		OffsetX:    [2]float64{sf * cos, -sf * sin},
		OffsetY:    [2]float64{sf * ar * sin, sf * ar * cos},
		TileOffset: float64(format)/2 - 0.5,
	}
}

// Split returns the format² tile viewports of p in row-major order.
// It is pure; degenerate input (see flame.Params.Validate) yields
// non-finite centers rather than an error.
func Split(p flame.Params, format int) []Transform {
	b := NewBasis(p, format)
	n := format * format
	scale := p.Scale * float64(format)

	out := make([]Transform, n)
	for i := range n {
		c := CoordAt(i, format)
		xf := float64(c.X) - b.TileOffset
		yf := float64(c.Y) - b.TileOffset

		out[i] = Transform{
			Coord:   c,
			Name:    TileName(p.Name, c),
			CenterX: p.CenterX + xf*b.OffsetX[0] + yf*b.OffsetY[0],
			CenterY: p.CenterY + xf*b.OffsetX[1] + yf*b.OffsetY[1],
			Scale:   scale,
		}
	}
	return out
}

// TileName names a tile after its flame, e.g. "spiral (1x0)".
func TileName(name string, c Coord) string {
	return name + " (" + strconv.Itoa(c.X) + "x" + strconv.Itoa(c.Y) + ")"
}

// Finite reports whether every tile has finite center and scale.
func Finite(ts []Transform) bool {
	for _, t := range ts {
		for _, v := range []float64{t.CenterX, t.CenterY, t.Scale} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

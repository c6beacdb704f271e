// Package flame reads the viewport of a single fractal flame.
//
// A flame element stores its viewport in a handful of string attributes:
//
//	<flame name="spiral" size="1920 1080" center="0.25 -0.1"
//	       zoom="0.5" scale="240" rotate="30" ...>
//
// [Extract] turns those attributes into typed [Params]. Numeric parsing is
// explicit and governed by a [Policy] so callers decide whether garbage input
// is coerced to zero (the behaviour older splitters had) or rejected.
package flame

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Attribute names read from a flame element.
const (
	AttrName   = "name"
	AttrSize   = "size"
	AttrCenter = "center"
	AttrZoom   = "zoom"
	AttrScale  = "scale"
	AttrRotate = "rotate"
)

// Sentinel errors for extraction failures.
var (
	// ErrNoElement is returned when there is no element to read from.
	ErrNoElement = errors.New("not a flame element")

	// ErrTokenCount is returned when size or center does not hold exactly two values.
	ErrTokenCount = errors.New("expected exactly two space-separated values")

	// ErrNotNumeric is returned by strict parsing for values that are not numbers.
	ErrNotNumeric = errors.New("not a number")

	// ErrMissing is returned for a required attribute that is absent.
	ErrMissing = errors.New("missing attribute")

	// ErrDegenerate is returned for viewports that cannot be tiled:
	// non-positive size or scale, or non-finite values.
	ErrDegenerate = errors.New("degenerate viewport")
)

// AttrError describes a flame attribute that could not be read.
type AttrError struct {
	Attr  string // Attribute name
	Value string // Raw attribute value
	Err   error  // One of the sentinel errors
}

func (e *AttrError) Error() string {
	return fmt.Sprintf("attribute %s=%q: %v", e.Attr, e.Value, e.Err)
}

func (e *AttrError) Unwrap() error { return e.Err }

// Attributes is anything that can look up attribute values by name.
// *scene.Element satisfies it.
type Attributes interface {
	Attr(name string) (string, bool)
}

// Params is the viewport of one flame.
type Params struct {
	Name    string
	Width   int // Pixel width, truncated toward zero
	Height  int // Pixel height, truncated toward zero
	CenterX float64
	CenterY float64
	Zoom    float64 // Base-2 logarithmic zoom; 1 halves the visible extent
	Scale   float64 // Pixels per flame-space unit at zoom 0
	Rotate  float64 // Viewport rotation in radians
}

// AspectRatio returns Height/Width.
func (p Params) AspectRatio() float64 {
	return float64(p.Height) / float64(p.Width)
}

// ZoomFactor returns 2^Zoom.
func (p Params) ZoomFactor() float64 {
	return math.Exp2(p.Zoom)
}

// RotateDegrees returns the rotation in degrees, as stored in the document.
func (p Params) RotateDegrees() float64 {
	return p.Rotate * 180 / math.Pi
}

// Validate reports ErrDegenerate when the viewport cannot be tiled.
func (p Params) Validate() error {
	switch {
	case p.Width <= 0 || p.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrDegenerate, p.Width, p.Height)
	case !(p.Scale > 0):
		return fmt.Errorf("%w: scale %v", ErrDegenerate, p.Scale)
	case math.IsInf(p.Scale, 0):
		return fmt.Errorf("%w: scale %v", ErrDegenerate, p.Scale)
	}
	for _, v := range []float64{p.CenterX, p.CenterY, p.Zoom, p.Rotate} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value %v", ErrDegenerate, v)
		}
	}
	return nil
}

// Extract reads the viewport of a flame element.
//
// size and center must each hold exactly two values under either policy.
// zoom and rotate default to 0 when absent; scale is required. Numbers are
// parsed with [ParseNumber] under policy. The returned Params are checked
// with [Params.Validate], so a nil error means the viewport can be tiled.
func Extract(el Attributes, policy Policy) (Params, error) {
	if el == nil {
		return Params{}, ErrNoElement
	}

	var p Params
	p.Name, _ = el.Attr(AttrName)

	w, h, err := pair(el, AttrSize, policy)
	if err != nil {
		return Params{}, err
	}
	p.Width, p.Height = int(w), int(h)

	if p.CenterX, p.CenterY, err = pair(el, AttrCenter, policy); err != nil {
		return Params{}, err
	}
	if p.Zoom, err = single(el, AttrZoom, policy, true); err != nil {
		return Params{}, err
	}
	if p.Scale, err = single(el, AttrScale, policy, false); err != nil {
		return Params{}, err
	}

	deg, err := single(el, AttrRotate, policy, true)
	if err != nil {
		return Params{}, err
	}
	p.Rotate = deg * math.Pi / 180

	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

func pair(el Attributes, name string, policy Policy) (float64, float64, error) {
	raw, _ := el.Attr(name)
	tokens := strings.Fields(raw)
	if len(tokens) != 2 {
		return 0, 0, &AttrError{Attr: name, Value: raw, Err: ErrTokenCount}
	}
	a, err := ParseNumber(tokens[0], policy)
	if err != nil {
		return 0, 0, &AttrError{Attr: name, Value: raw, Err: err}
	}
	b, err := ParseNumber(tokens[1], policy)
	if err != nil {
		return 0, 0, &AttrError{Attr: name, Value: raw, Err: err}
	}
	return a, b, nil
}

func single(el Attributes, name string, policy Policy, optional bool) (float64, error) {
	raw, ok := el.Attr(name)
	if !ok {
		if optional || policy == PolicyLenient {
			return 0, nil
		}
		return 0, &AttrError{Attr: name, Err: ErrMissing}
	}
	v, err := ParseNumber(raw, policy)
	if err != nil {
		return 0, &AttrError{Attr: name, Value: raw, Err: err}
	}
	return v, nil
}

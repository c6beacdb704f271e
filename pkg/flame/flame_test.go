package flame

import (
	"errors"
	"math"
	"testing"
)

// attrs is a map-backed Attributes for tests.
type attrs map[string]string

func (a attrs) Attr(name string) (string, bool) {
	v, ok := a[name]
	return v, ok
}

func validAttrs() attrs {
	return attrs{
		"name":   "spiral",
		"size":   "1920 1080",
		"center": "0.25 -0.5",
		"zoom":   "1",
		"scale":  "240",
		"rotate": "90",
	}
}

func TestExtract(t *testing.T) {
	p, err := Extract(validAttrs(), PolicyStrict)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	if p.Name != "spiral" {
		t.Errorf("Name = %q, want %q", p.Name, "spiral")
	}
	if p.Width != 1920 || p.Height != 1080 {
		t.Errorf("size = %dx%d, want 1920x1080", p.Width, p.Height)
	}
	if p.CenterX != 0.25 || p.CenterY != -0.5 {
		t.Errorf("center = (%v, %v), want (0.25, -0.5)", p.CenterX, p.CenterY)
	}
	if p.Zoom != 1 || p.Scale != 240 {
		t.Errorf("zoom/scale = %v/%v, want 1/240", p.Zoom, p.Scale)
	}
	if math.Abs(p.Rotate-math.Pi/2) > 1e-12 {
		t.Errorf("Rotate = %v, want pi/2", p.Rotate)
	}
	if math.Abs(p.RotateDegrees()-90) > 1e-9 {
		t.Errorf("RotateDegrees() = %v, want 90", p.RotateDegrees())
	}
	if p.ZoomFactor() != 2 {
		t.Errorf("ZoomFactor() = %v, want 2", p.ZoomFactor())
	}
	if got, want := p.AspectRatio(), 1080.0/1920.0; got != want {
		t.Errorf("AspectRatio() = %v, want %v", got, want)
	}
}

func TestExtractTruncatesSize(t *testing.T) {
	a := validAttrs()
	a["size"] = "100.9 50.2"

	p, err := Extract(a, PolicyStrict)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if p.Width != 100 || p.Height != 50 {
		t.Errorf("size = %dx%d, want 100x50", p.Width, p.Height)
	}
}

func TestExtractOptionalAttributes(t *testing.T) {
	a := validAttrs()
	delete(a, "zoom")
	delete(a, "rotate")

	for _, policy := range []Policy{PolicyLenient, PolicyStrict} {
		p, err := Extract(a, policy)
		if err != nil {
			t.Fatalf("Extract(%s) error: %v", policy, err)
		}
		if p.Zoom != 0 || p.Rotate != 0 {
			t.Errorf("Extract(%s) zoom/rotate = %v/%v, want 0/0", policy, p.Zoom, p.Rotate)
		}
	}
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name    string
		attr    string
		value   string
		remove  bool
		policy  Policy
		wantErr error
	}{
		{"size one token", "size", "100", false, PolicyLenient, ErrTokenCount},
		{"size three tokens", "size", "1 2 3", false, PolicyLenient, ErrTokenCount},
		{"center empty", "center", "", false, PolicyStrict, ErrTokenCount},
		{"center missing", "center", "", true, PolicyLenient, ErrTokenCount},
		{"size garbage strict", "size", "abc 100", false, PolicyStrict, ErrNotNumeric},
		{"size garbage lenient", "size", "abc 100", false, PolicyLenient, ErrDegenerate},
		{"zoom garbage strict", "zoom", "big", false, PolicyStrict, ErrNotNumeric},
		{"scale missing strict", "scale", "", true, PolicyStrict, ErrMissing},
		{"scale missing lenient", "scale", "", true, PolicyLenient, ErrDegenerate},
		{"scale zero", "scale", "0", false, PolicyStrict, ErrDegenerate},
		{"scale negative", "scale", "-3", false, PolicyStrict, ErrDegenerate},
		{"height zero", "size", "100 0", false, PolicyStrict, ErrDegenerate},
		{"scale overflow lenient", "scale", "1e999", false, PolicyLenient, ErrDegenerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validAttrs()
			if tt.remove {
				delete(a, tt.attr)
			} else {
				a[tt.attr] = tt.value
			}

			_, err := Extract(a, tt.policy)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Extract() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExtractAttrError(t *testing.T) {
	a := validAttrs()
	a["center"] = "1 x"

	_, err := Extract(a, PolicyStrict)
	var ae *AttrError
	if !errors.As(err, &ae) {
		t.Fatalf("Extract() error = %T, want *AttrError", err)
	}
	if ae.Attr != "center" || ae.Value != "1 x" {
		t.Errorf("AttrError = %+v", ae)
	}
}

func TestExtractNil(t *testing.T) {
	if _, err := Extract(nil, PolicyLenient); !errors.Is(err, ErrNoElement) {
		t.Errorf("Extract(nil) error = %v, want ErrNoElement", err)
	}
}

func TestValidate(t *testing.T) {
	good := Params{Width: 10, Height: 10, Scale: 1}
	if err := good.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}

	bad := []Params{
		{Width: 0, Height: 10, Scale: 1},
		{Width: 10, Height: -1, Scale: 1},
		{Width: 10, Height: 10, Scale: math.NaN()},
		{Width: 10, Height: 10, Scale: math.Inf(1)},
		{Width: 10, Height: 10, Scale: 1, CenterX: math.Inf(-1)},
		{Width: 10, Height: 10, Scale: 1, Zoom: math.NaN()},
	}
	for i, p := range bad {
		if err := p.Validate(); !errors.Is(err, ErrDegenerate) {
			t.Errorf("case %d: Validate() error = %v, want ErrDegenerate", i, err)
		}
	}
}

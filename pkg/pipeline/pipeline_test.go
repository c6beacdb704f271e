package pipeline

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/flamesplit/pkg/errors"
	"github.com/matzehuels/flamesplit/pkg/flame"
	"github.com/matzehuels/flamesplit/pkg/observability"
)

const square = `<flames><flame name="sq" size="100 100" center="0 0" scale="1"/></flames>`

const squareLevel1 = `<flames>` +
	`<flame name="sq (0x0)" size="100 100" center="-25 -25" scale="2"/>` +
	`<flame name="sq (1x0)" size="100 100" center="25 -25" scale="2"/>` +
	`<flame name="sq (0x1)" size="100 100" center="-25 25" scale="2"/>` +
	`<flame name="sq (1x1)" size="100 100" center="25 25" scale="2"/>` +
	`</flames>` + "\n"

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", DefaultLevel},
		{"abc", DefaultLevel},
		{"2", 2},
		{" 3", 3},
		{"3x3", 3},
		{"+4", 4},
		{"-1", -1},
		{"0", 0},
		{"99", 99},
		{"-", DefaultLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}

	if opts.MaxLevel != DefaultMaxLevel {
		t.Errorf("MaxLevel = %d, want %d", opts.MaxLevel, DefaultMaxLevel)
	}
	if opts.Level != DefaultLevel {
		t.Errorf("Level = %d, want %d", opts.Level, DefaultLevel)
	}
	if opts.ParsePolicy() != flame.PolicyLenient || opts.Policy != "lenient" {
		t.Errorf("Policy = %q, want lenient", opts.Policy)
	}
	if opts.Filename != DefaultFilename {
		t.Errorf("Filename = %q, want %q", opts.Filename, DefaultFilename)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discarding logger")
	}
}

func TestOptionsClampLevel(t *testing.T) {
	tests := []struct {
		level, maxLevel int
		want            int
	}{
		{0, 4, 1},
		{-3, 4, 1},
		{2, 4, 2},
		{9, 4, 4},
		{6, 6, 6},
		{7, 0, 4}, // maxLevel defaults to 4
	}

	for _, tt := range tests {
		opts := Options{Level: tt.level, MaxLevel: tt.maxLevel}
		if err := opts.ValidateAndSetDefaults(); err != nil {
			t.Fatalf("ValidateAndSetDefaults() error: %v", err)
		}
		if opts.Level != tt.want {
			t.Errorf("Level %d with max %d = %d, want %d", tt.level, tt.maxLevel, opts.Level, tt.want)
		}
	}
}

func TestOptionsValidation(t *testing.T) {
	opts := Options{Policy: "fuzzy"}
	if err := opts.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidPolicy) {
		t.Errorf("invalid policy error = %v, want INVALID_POLICY", err)
	}

	opts = Options{MaxLevel: 9}
	if err := opts.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidLevel) {
		t.Errorf("max level 9 error = %v, want INVALID_LEVEL", err)
	}

	opts = Options{Policy: "Strict"}
	if err := opts.ValidateAndSetDefaults(); err != nil || opts.ParsePolicy() != flame.PolicyStrict {
		t.Errorf("Strict policy = %q, %v", opts.ParsePolicy(), err)
	}
}

func TestLevels(t *testing.T) {
	levels := Levels(4)
	if len(levels) != 4 {
		t.Fatalf("Levels(4) = %d entries, want 4", len(levels))
	}
	labels := []string{"2x2", "4x4", "8x8", "16x16"}
	for i, l := range levels {
		if l.Label() != labels[i] {
			t.Errorf("Levels(4)[%d] = %s, want %s", i, l.Label(), labels[i])
		}
	}
	if len(Levels(0)) != DefaultMaxLevel {
		t.Errorf("Levels(0) should fall back to the default max level")
	}
}

func TestRunnerSplit(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	res, err := r.Split(context.Background(), []byte(square), Options{Level: 1, Filename: "sq.flame"})
	if err != nil {
		t.Fatalf("Split() error: %v", err)
	}

	if string(res.Output) != squareLevel1 {
		t.Errorf("Output =\n%s\nwant\n%s", res.Output, squareLevel1)
	}
	if res.Filename != "sq_2x2.flame" {
		t.Errorf("Filename = %q, want sq_2x2.flame", res.Filename)
	}
	if res.Format != 2 || res.Flames != 1 || res.Tiles != 4 || len(res.Skipped) != 0 {
		t.Errorf("result = format %d, flames %d, tiles %d, skipped %v", res.Format, res.Flames, res.Tiles, res.Skipped)
	}
	if res.CacheHit {
		t.Error("NullCache should never hit")
	}
	if res.Stats.InputBytes != len(square) || res.Stats.OutputBytes != len(res.Output) {
		t.Errorf("stats = %+v", res.Stats)
	}
}

func TestRunnerSplitLevels(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	in := `<flames><flame name="a" size="64 48" center="1 1" scale="5" rotate="30"/>` +
		`<flame name="b" size="32 32" center="0 0" scale="2" zoom="1"/></flames>`

	for level := 1; level <= 4; level++ {
		res, err := r.Split(context.Background(), []byte(in), Options{Level: level})
		if err != nil {
			t.Fatalf("level %d: Split() error: %v", level, err)
		}
		f := 1 << level
		if res.Tiles != 2*f*f {
			t.Errorf("level %d: Tiles = %d, want %d", level, res.Tiles, 2*f*f)
		}
		if got := strings.Count(string(res.Output), "<flame "); got != 2*f*f {
			t.Errorf("level %d: output has %d flames, want %d", level, got, 2*f*f)
		}
	}
}

func TestRunnerSplitMalformed(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	for _, in := range []string{"", "<flames>", "not xml", "<a/><b/>"} {
		res, err := r.Split(context.Background(), []byte(in), Options{})
		if !errors.Is(err, errors.ErrCodeInvalidDocument) {
			t.Errorf("Split(%q) error = %v, want INVALID_DOCUMENT", in, err)
		}
		if res != nil {
			t.Errorf("Split(%q) returned partial output", in)
		}
	}
}

func TestRunnerSplitSkipsBadFlames(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	in := `<flames>` +
		`<flame name="bad" size="100" center="0 0" scale="1"/>` +
		`<flame name="ok" size="10 10" center="0 0" scale="1"/>` +
		`<flame name="flat" size="0 10" center="0 0" scale="1"/>` +
		`</flames>`

	res, err := r.Split(context.Background(), []byte(in), Options{Level: 1})
	if err != nil {
		t.Fatalf("Split() error: %v", err)
	}
	if res.Flames != 3 || res.Tiles != 4 {
		t.Errorf("flames %d, tiles %d, want 3 and 4", res.Flames, res.Tiles)
	}
	if len(res.Skipped) != 2 || res.Skipped[0].Name != "bad" || res.Skipped[1].Index != 2 {
		t.Fatalf("Skipped = %+v", res.Skipped)
	}
	out := string(res.Output)
	if !strings.Contains(out, `<flame name="bad" size="100" center="0 0" scale="1"/>`) {
		t.Errorf("skipped flame not kept verbatim:\n%s", out)
	}
	if strings.Contains(out, "NAN") || strings.Contains(out, "INF") {
		t.Errorf("output contains non-finite values:\n%s", out)
	}
}

func TestRunnerSplitPolicies(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	in := `<flames><flame name="g" size="100 100" center="0 zero" scale="1"/></flames>`

	lenient, err := r.Split(context.Background(), []byte(in), Options{})
	if err != nil {
		t.Fatalf("lenient Split() error: %v", err)
	}
	if lenient.Tiles != 4 || len(lenient.Skipped) != 0 {
		t.Errorf("lenient: tiles %d, skipped %v", lenient.Tiles, lenient.Skipped)
	}

	strict, err := r.Split(context.Background(), []byte(in), Options{Policy: "strict"})
	if err != nil {
		t.Fatalf("strict Split() error: %v", err)
	}
	if strict.Tiles != 0 || len(strict.Skipped) != 1 {
		t.Errorf("strict: tiles %d, skipped %v", strict.Tiles, strict.Skipped)
	}
}

func TestRunnerSplitCache(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	ctx := context.Background()
	in := []byte(`<flames><flame name="bad" size="1" center="0 0" scale="1"/>` + square[8:])

	first, err := r.Split(ctx, in, Options{Level: 2})
	if err != nil {
		t.Fatalf("first Split() error: %v", err)
	}
	if first.CacheHit {
		t.Error("first split should miss")
	}

	second, err := r.Split(ctx, in, Options{Level: 2})
	if err != nil {
		t.Fatalf("second Split() error: %v", err)
	}
	if !second.CacheHit {
		t.Error("second split should hit")
	}
	if !bytes.Equal(first.Output, second.Output) {
		t.Error("cached output differs")
	}
	if second.Tiles != first.Tiles || len(second.Skipped) != 1 || second.Skipped[0].Name != "bad" {
		t.Errorf("cached report = tiles %d, skipped %v", second.Tiles, second.Skipped)
	}

	other, _ := r.Split(ctx, in, Options{Level: 3})
	if other.CacheHit {
		t.Error("different level should miss")
	}

	refreshed, _ := r.Split(ctx, in, Options{Level: 2, Refresh: true})
	if refreshed.CacheHit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestRunnerSplitHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetSplitHooks(hooks)
	t.Cleanup(observability.Reset)

	r := NewRunner(nil, nil, nil)
	in := `<flames><flame name="bad" size="x" center="0 0" scale="1"/>` + square[8:]
	if _, err := r.Split(context.Background(), []byte(in), Options{}); err != nil {
		t.Fatalf("Split() error: %v", err)
	}

	if hooks.started != 1 || hooks.completed != 1 {
		t.Errorf("start/complete = %d/%d, want 1/1", hooks.started, hooks.completed)
	}
	if len(hooks.skipped) != 1 || hooks.skipped[0] != "bad" {
		t.Errorf("skipped = %v, want [bad]", hooks.skipped)
	}
	if hooks.tiles != 4 {
		t.Errorf("completed tiles = %d, want 4", hooks.tiles)
	}
}

func TestRunnerSplitCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewRunner(nil, nil, nil).Split(ctx, []byte(square), Options{}); err != context.Canceled {
		t.Errorf("Split() error = %v, want context.Canceled", err)
	}
}

// memCache is a map-backed cache.Cache.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

type recordingHooks struct {
	observability.NoopSplitHooks
	started, completed, tiles int
	skipped                   []string
}

func (h *recordingHooks) OnSplitStart(context.Context, string, int) { h.started++ }

func (h *recordingHooks) OnFlameSkipped(_ context.Context, _ int, name string, _ error) {
	h.skipped = append(h.skipped, name)
}

func (h *recordingHooks) OnSplitComplete(_ context.Context, _ string, tiles int, _ time.Duration, _ error) {
	h.completed++
	h.tiles = tiles
}

// Package pipeline provides the split pipeline for flamesplit.
//
// This package implements the complete load → split → write pipeline used by
// both the CLI and the upload service. Centralizing it keeps level handling,
// caching and the output fix-ups identical across entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: parse the uploaded XML into a scene tree
//  2. Split: replace every flame with its grid of tile flames
//  3. Write: serialize the new tree and apply the output normalization
//
// Each stage is available as a plain function ([Load], [SplitScene],
// [Write]); the [Runner] chains them and adds caching and reporting.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Split(ctx, data, pipeline.Options{
//	    Level:    2,
//	    Filename: "spiral.flame",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(res.Filename, res.Output, 0o644)
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flamesplit/pkg/errors"
	"github.com/matzehuels/flamesplit/pkg/flame"
	"github.com/matzehuels/flamesplit/pkg/tile"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultLevel is used when no level, or an unreadable one, is given.
	DefaultLevel = tile.MinLevel

	// DefaultMaxLevel is the highest level offered unless configured.
	DefaultMaxLevel = tile.DefaultMaxLevel

	// DefaultFilename names uploads that arrive without a name.
	DefaultFilename = "scene.flame"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one split.
type Options struct {
	Level    int    `json:"level"`
	MaxLevel int    `json:"max_level,omitempty"`
	Policy   string `json:"policy,omitempty"`
	Filename string `json:"filename,omitempty"`

	// Refresh bypasses the cache lookup; the result is still stored.
	Refresh bool `json:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	policy    flame.Policy
	validated bool
}

// Result contains the outputs of a split.
type Result struct {
	// Output is the normalized scene, ready to be written to disk.
	Output []byte

	// Filename is the download name derived from Options.Filename.
	Filename string

	// Level and Format are the effective (clamped) grid size.
	Level  int
	Format int

	// Flames counts the flames found; Tiles the tile flames written.
	Flames int
	Tiles  int

	// Skipped lists the flames kept unsplit.
	Skipped []SkippedFlame

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether Output came from the cache.
	CacheHit bool
}

// SkippedFlame describes a flame that was left in the output unsplit.
type SkippedFlame struct {
	Index  int    `json:"index"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	InputBytes  int
	OutputBytes int
	LoadTime    time.Duration
	SplitTime   time.Duration
	WriteTime   time.Duration
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults, clamps the level and validates the
// parse policy. Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	switch {
	case o.MaxLevel <= 0:
		o.MaxLevel = DefaultMaxLevel
	case o.MaxLevel > tile.LevelCeiling:
		return errors.New(errors.ErrCodeInvalidLevel,
			"max level %d exceeds the limit of %d", o.MaxLevel, tile.LevelCeiling)
	}
	o.Level = tile.NewSplitConfig(o.Level, o.MaxLevel).Level

	p, err := flame.ParsePolicy(o.Policy)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPolicy, err, "invalid policy")
	}
	o.policy = p
	o.Policy = string(p)

	if strings.TrimSpace(o.Filename) == "" {
		o.Filename = DefaultFilename
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// Config returns the grid for the validated options.
func (o *Options) Config() tile.SplitConfig {
	return tile.SplitConfig{Level: o.Level}
}

// ParsePolicy returns the validated parse policy.
func (o *Options) ParsePolicy() flame.Policy {
	if o.policy == "" {
		return flame.DefaultPolicy
	}
	return o.policy
}

// ParseLevel reads a level from a form or flag value. Like a web form's
// integer cast it takes the leading integer, so "3", " 3" and "3x3" are all 3.
// Empty or unreadable values yield DefaultLevel. The result is not clamped.
func ParseLevel(s string) int {
	s = strings.TrimLeft(s, " \t\n\r\v\f")

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	n := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		if n < 1<<20 {
			n = n*10 + int(s[i]-'0')
		}
		i++
	}
	if i == start {
		return DefaultLevel
	}
	if s[0] == '-' {
		return -n
	}
	return n
}

// Levels lists the selectable levels up to maxLevel as split configurations.
func Levels(maxLevel int) []tile.SplitConfig {
	if maxLevel < tile.MinLevel {
		maxLevel = DefaultMaxLevel
	}
	out := make([]tile.SplitConfig, 0, maxLevel)
	for l := tile.MinLevel; l <= maxLevel; l++ {
		out = append(out, tile.SplitConfig{Level: l})
	}
	return out
}

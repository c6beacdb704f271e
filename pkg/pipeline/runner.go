package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flamesplit/pkg/cache"
	"github.com/matzehuels/flamesplit/pkg/observability"
	"github.com/matzehuels/flamesplit/pkg/scene"
)

// cacheKeyType labels split entries in cache hooks.
const cacheKeyType = "split"

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use it so they share cache keys and reporting.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is how long stored splits live. Zero means cache.TTLSplit.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// cachedSplit is the cache representation of a split.
type cachedSplit struct {
	Output  []byte         `json:"output"`
	Flames  int            `json:"flames"`
	Tiles   int            `json:"tiles"`
	Skipped []SkippedFlame `json:"skipped,omitempty"`
}

// Split runs load → split → write on input.
//
// A malformed document fails the whole request with an INVALID_DOCUMENT
// error. Individual flames that cannot be split never fail the request; they
// are kept unsplit and listed in Result.Skipped.
func (r *Runner) Split(ctx context.Context, input []byte, opts Options) (res *Result, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := opts.Config()
	start := time.Now()
	observability.Split().OnSplitStart(ctx, opts.Filename, cfg.Level)
	defer func() {
		tiles := 0
		if res != nil {
			tiles = res.Tiles
		}
		observability.Split().OnSplitComplete(ctx, opts.Filename, tiles, time.Since(start), err)
	}()

	res = &Result{
		Filename: scene.ArtifactFilename(opts.Filename, cfg.Format()),
		Level:    cfg.Level,
		Format:   cfg.Format(),
	}
	res.Stats.InputBytes = len(input)

	key := r.Keyer.SplitKey(cache.Hash(input), cache.SplitKeyOpts{
		Level:  cfg.Level,
		Policy: opts.Policy,
	})

	if !opts.Refresh {
		if cached, ok := r.lookup(ctx, key); ok {
			res.Output = cached.Output
			res.Flames = cached.Flames
			res.Tiles = cached.Tiles
			res.Skipped = cached.Skipped
			res.Stats.OutputBytes = len(cached.Output)
			res.CacheHit = true
			logger.Debug("split cache hit", "file", opts.Filename, "level", cfg.Level)
			r.reportSkipped(ctx, logger, res.Skipped)
			return res, nil
		}
	}

	// Stage 1: Load
	t := time.Now()
	doc, err := Load(input)
	if err != nil {
		return nil, err
	}
	res.Stats.LoadTime = time.Since(t)

	// Stage 2: Split
	t = time.Now()
	out, report := SplitScene(doc, cfg, opts.ParsePolicy())
	res.Stats.SplitTime = time.Since(t)
	res.Flames = report.Flames
	res.Tiles = report.Tiles
	res.Skipped = skippedFlames(report.Skipped)

	if report.Flames == 0 {
		logger.Warn("no flames found", "file", opts.Filename)
	}
	r.reportSkipped(ctx, logger, res.Skipped)

	// Stage 3: Write
	t = time.Now()
	res.Output = Write(out)
	res.Stats.WriteTime = time.Since(t)
	res.Stats.OutputBytes = len(res.Output)

	logger.Info("split scene",
		"file", opts.Filename,
		"grid", cfg.Label(),
		"flames", res.Flames,
		"tiles", res.Tiles,
		"skipped", len(res.Skipped),
		"duration", time.Since(start))

	r.store(ctx, key, res)
	return res, nil
}

// lookup reads a cached split. Unreadable entries count as misses.
func (r *Runner) lookup(ctx context.Context, key string) (cachedSplit, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return cachedSplit{}, false
	}
	var c cachedSplit
	if err := json.Unmarshal(data, &c); err != nil {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return cachedSplit{}, false
	}
	observability.Cache().OnCacheHit(ctx, cacheKeyType)
	return c, true
}

// store writes a split to the cache. Failures are logged, never returned.
func (r *Runner) store(ctx context.Context, key string, res *Result) {
	data, err := json.Marshal(cachedSplit{
		Output:  res.Output,
		Flames:  res.Flames,
		Tiles:   res.Tiles,
		Skipped: res.Skipped,
	})
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.ttl()); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
}

func (r *Runner) reportSkipped(ctx context.Context, logger *log.Logger, skipped []SkippedFlame) {
	for _, s := range skipped {
		logger.Warn("flame skipped", "index", s.Index, "name", s.Name, "reason", s.Reason)
		observability.Split().OnFlameSkipped(ctx, s.Index, s.Name, fmt.Errorf("%s", s.Reason))
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.TTLSplit
}

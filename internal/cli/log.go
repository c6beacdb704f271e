// Package cli implements the flamesplit command-line interface.
//
// This package provides commands for splitting fractal-flame scenes into
// tile grids, serving the upload form, and managing the split cache and
// history. The CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - split: Split every flame of a scene file into a tile grid
//   - serve: Run the upload service
//   - levels: List the available grid levels
//   - history: Show recent splits
//   - cache: Manage the split cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	import "github.com/matzehuels/flamesplit/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flamesplit/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, rounded to the millisecond.
// Example output: "Split 3 flames (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default if none
// is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability
// =============================================================================

// logHooks reports pipeline and cache events at debug level.
type logHooks struct {
	logger *log.Logger
}

// RegisterLogHooks routes split and cache events to logger.
func RegisterLogHooks(logger *log.Logger) {
	h := logHooks{logger: logger}
	observability.SetSplitHooks(h)
	observability.SetCacheHooks(h)
}

func (h logHooks) OnSplitStart(_ context.Context, filename string, level int) {
	h.logger.Debug("split started", "file", filename, "level", level)
}

// OnFlameSkipped is a no-op; the runner already warns about skipped flames.
func (h logHooks) OnFlameSkipped(context.Context, int, string, error) {}

func (h logHooks) OnSplitComplete(_ context.Context, filename string, tiles int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("split failed", "file", filename, "error", err, "duration", d)
		return
	}
	h.logger.Debug("split finished", "file", filename, "tiles", tiles, "duration", d)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

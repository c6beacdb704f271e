// Package cli implements the flamesplit command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flamesplit/internal/config"
	"github.com/matzehuels/flamesplit/pkg/buildinfo"
	"github.com/matzehuels/flamesplit/pkg/cache"
	"github.com/matzehuels/flamesplit/pkg/history"
	"github.com/matzehuels/flamesplit/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "flamesplit"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is the --config flag. Empty means config.DefaultPath.
	ConfigPath string

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "flamesplit cuts fractal flames into tile grids",
		Long: `flamesplit rewrites a fractal-flame scene so that every <flame> becomes a
grid of tiles. Rendered side by side, the tiles reassemble the original image
at a multiple of its resolution.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default "+config.DefaultPath()+")")

	root.AddCommand(c.splitCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.levelsCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("config loaded", "path", c.ConfigPath, "cache", cfg.Cache.Backend, "history", cfg.History.Backend)
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	store, err := newCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
	}
	r := pipeline.NewRunner(store, keyer, c.Logger)
	r.TTL = cfg.Cache.TTL
	return r, nil
}

func newCache(ctx context.Context, cfg config.Cache, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		c, err := withSpinner(ctx, os.Stderr, isTerminal(os.Stderr), "Connecting to redis at "+cfg.Addr, func() (*cache.RedisCache, error) {
			return cache.NewRedisCache(ctx, cfg.RedisConfig)
		})
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		return c, nil
	default:
		dir := cfg.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	}
}

// newHistory opens the configured history store.
func (c *CLI) newHistory(ctx context.Context) (history.Store, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	h := cfg.History
	switch h.Backend {
	case config.BackendNone:
		return history.NewNullStore(), nil
	case config.BackendMemory:
		return history.NewMemoryStore(h.Keep), nil
	case config.BackendMongo:
		s, err := withSpinner(ctx, os.Stderr, isTerminal(os.Stderr), "Connecting to mongo", func() (*history.MongoStore, error) {
			return history.NewMongoStore(ctx, h.MongoConfig)
		})
		if err != nil {
			return nil, fmt.Errorf("open mongo history: %w", err)
		}
		return s, nil
	default:
		return history.NewFileStore(h.Dir, h.Keep)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/flamesplit/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

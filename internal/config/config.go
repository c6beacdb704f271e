// Package config loads flamesplit's TOML configuration.
//
// The file lives at $XDG_CONFIG_HOME/flamesplit/config.toml (or the
// platform equivalent) unless a path is given explicitly. Every key is
// optional; compiled-in defaults fill the gaps:
//
//	[split]
//	max_level = 4
//	policy = "lenient"
//
//	[server]
//	addr = ":8080"
//	max_upload_mb = 16
//
//	[cache]
//	backend = "file"    # file | redis | none
//	ttl = "168h"
//	redis_addr = "localhost:6379"
//
//	[history]
//	backend = "file"    # file | memory | mongo | none
//	mongo_uri = "mongodb://localhost:27017"
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flamesplit/pkg/cache"
	ferrors "github.com/matzehuels/flamesplit/pkg/errors"
	"github.com/matzehuels/flamesplit/pkg/flame"
	"github.com/matzehuels/flamesplit/pkg/history"
	"github.com/matzehuels/flamesplit/pkg/tile"
)

// Backend names.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Config is the complete configuration.
type Config struct {
	Split   Split   `toml:"split"`
	Server  Server  `toml:"server"`
	Cache   Cache   `toml:"cache"`
	History History `toml:"history"`
}

// Split configures the pipeline.
type Split struct {
	MaxLevel int    `toml:"max_level"`
	Policy   string `toml:"policy"`
}

// Server configures the upload service.
type Server struct {
	Addr        string `toml:"addr"`
	MaxUploadMB int64  `toml:"max_upload_mb"`
}

// MaxUploadBytes returns the upload limit in bytes.
func (s Server) MaxUploadBytes() int64 {
	return s.MaxUploadMB << 20
}

// Cache selects and configures the split cache.
type Cache struct {
	Backend string        `toml:"backend"`
	TTL     time.Duration `toml:"ttl"`
	Dir     string        `toml:"dir"`
	Prefix  string        `toml:"prefix"`
	cache.RedisConfig
}

// History selects and configures the split log.
type History struct {
	Backend string `toml:"backend"`
	Keep    int    `toml:"keep"`
	Dir     string `toml:"dir"`
	history.MongoConfig
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Split: Split{
			MaxLevel: tile.DefaultMaxLevel,
			Policy:   string(flame.DefaultPolicy),
		},
		Server: Server{
			Addr:        ":8080",
			MaxUploadMB: 16,
		},
		Cache: Cache{
			Backend: BackendFile,
			TTL:     cache.TTLSplit,
			RedisConfig: cache.RedisConfig{
				Addr: "localhost:6379",
			},
		},
		History: History{
			Backend: BackendFile,
			Keep:    100,
			MongoConfig: history.MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   history.DefaultDatabase,
				Collection: history.DefaultCollection,
			},
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".flamesplit", "config.toml")
	}
	return filepath.Join(dir, "flamesplit", "config.toml")
}

// Load reads the file at path over the defaults. An empty path means
// DefaultPath, which may be absent; an explicit path must exist.
// Unknown keys are rejected so typos do not pass silently.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		if explicit {
			return nil, ferrors.Wrap(ferrors.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return cfg, cfg.Validate()
	}
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "read config %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, ferrors.New(ferrors.ErrCodeInvalidInput,
			"config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	return cfg, cfg.Validate()
}

// Validate checks value ranges and backend names.
func (c *Config) Validate() error {
	if c.Split.MaxLevel < tile.MinLevel || c.Split.MaxLevel > tile.LevelCeiling {
		return ferrors.New(ferrors.ErrCodeInvalidLevel,
			"split.max_level must be between %d and %d, got %d", tile.MinLevel, tile.LevelCeiling, c.Split.MaxLevel)
	}
	if _, err := flame.ParsePolicy(c.Split.Policy); err != nil {
		return ferrors.Wrap(ferrors.ErrCodeInvalidPolicy, err, "split.policy")
	}
	if c.Server.MaxUploadMB <= 0 {
		return ferrors.New(ferrors.ErrCodeInvalidInput, "server.max_upload_mb must be positive")
	}
	if c.Cache.TTL < 0 {
		return ferrors.New(ferrors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}

	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return ferrors.New(ferrors.ErrCodeInvalidInput,
			"cache.backend %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	switch c.History.Backend {
	case BackendFile, BackendMemory, BackendMongo, BackendNone:
	default:
		return ferrors.New(ferrors.ErrCodeInvalidInput,
			"history.backend %q (must be one of: file, memory, mongo, none)", c.History.Backend)
	}
	return nil
}

// Package cache stores split results so repeated requests for the same scene
// and level skip the work.
//
// Three backends implement [Cache]:
//   - [FileCache]: files under ~/.cache/flamesplit, used by the CLI
//   - [RedisCache]: shared cache for the upload service
//   - [NullCache]: caching disabled
//
// Keys are produced by a [Keyer] so every entry point derives identical keys
// for identical requests. [ScopedKeyer] prefixes keys for isolation.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default time-to-live values.
const (
	// TTLSplit is how long a split scene is kept.
	TTLSplit = 7 * 24 * time.Hour
)

// SplitKeyOpts are the request options that change a split's output.
type SplitKeyOpts struct {
	Level  int    `json:"level"`
	Policy string `json:"policy"`
}

// Keyer derives cache keys.
type Keyer interface {
	// SplitKey returns the key for the split of the scene with content hash
	// inputHash under opts.
	SplitKey(inputHash string, opts SplitKeyOpts) string
}

// DefaultKeyer builds keys of the form "split:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SplitKey implements Keyer.
func (DefaultKeyer) SplitKey(inputHash string, opts SplitKeyOpts) string {
	return hashKey("split", inputHash, opts)
}


package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one backend without seeing each other's entries.
//
// Example usage:
//
//	// Upload service keys in a shared Redis
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "flamesplit:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SplitKey generates a prefixed key for split caching.
func (k *ScopedKeyer) SplitKey(inputHash string, opts SplitKeyOpts) string {
	return k.prefix + k.inner.SplitKey(inputHash, opts)
}

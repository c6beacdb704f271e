package history

import (
	"context"
	"sync"
)

// MemoryStore keeps the most recent records in a fixed-size ring.
// It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	ring  []Record
	next  int
	count int
}

// NewMemoryStore creates a store holding at most capacity records.
// A capacity below 1 is raised to DefaultLimit.
func NewMemoryStore(capacity int) *MemoryStore {
	return &MemoryStore{ring: make([]Record, limit(capacity))}
}

// Add stores rec, evicting the oldest record when full.
func (s *MemoryStore) Add(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ring[s.next] = rec
	s.next = (s.next + 1) % len(s.ring)
	if s.count < len(s.ring) {
		s.count++
	}
	return nil
}

// Recent returns up to n records, newest first.
func (s *MemoryStore) Recent(_ context.Context, n int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n = min(limit(n), s.count)
	out := make([]Record, 0, n)
	for i := 1; i <= n; i++ {
		idx := (s.next - i + len(s.ring)) % len(s.ring)
		out = append(out, s.ring[idx])
	}
	return out, nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Close does nothing.
func (s *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)

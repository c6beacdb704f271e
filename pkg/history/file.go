package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// FileStore keeps one JSON file per record in a config directory.
// It is meant for the CLI, where a single user appends a handful of records.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
	keep    int
}

// NewFileStore creates a file-based history store that retains the newest
// keep records. If baseDir is empty, it defaults to
// ~/.config/flamesplit/history/.
func NewFileStore(baseDir string, keep int) (*FileStore, error) {
	if baseDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("get config dir: %w", err)
		}
		baseDir = filepath.Join(dir, "flamesplit", "history")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	if keep <= 0 {
		keep = 100
	}
	return &FileStore{baseDir: baseDir, keep: keep}, nil
}

func (s *FileStore) recordPath(rec Record) string {
	// The timestamp prefix keeps directory order chronological.
	name := rec.CreatedAt.UTC().Format("20060102T150405.000000000") + "-" + rec.ID + ".json"
	return filepath.Join(s.baseDir, name)
}

// Add writes rec and prunes records beyond the retention limit.
func (s *FileStore) Add(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := os.WriteFile(s.recordPath(rec), data, 0o600); err != nil {
		return fmt.Errorf("write record file: %w", err)
	}

	names, err := s.names()
	if err != nil {
		return err
	}
	for len(names) > s.keep {
		_ = os.Remove(filepath.Join(s.baseDir, names[0]))
		names = names[1:]
	}
	return nil
}

// Recent returns up to n records, newest first. Unreadable files are skipped.
func (s *FileStore) Recent(_ context.Context, n int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names, err := s.names()
	if err != nil {
		return nil, err
	}

	n = limit(n)
	var out []Record
	for i := len(names) - 1; i >= 0 && len(out) < n; i-- {
		data, err := os.ReadFile(filepath.Join(s.baseDir, names[i]))
		if err != nil {
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// names lists record files, oldest first.
func (s *FileStore) names() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read history dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}

// Close does nothing for file store.
func (s *FileStore) Close(context.Context) error { return nil }

// Path returns the base directory for record files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)

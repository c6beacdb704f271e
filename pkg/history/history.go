// Package history keeps a log of completed splits.
//
// The log is informational: the upload service and the CLI append one
// [Record] per successful split, and `flamesplit history` lists the most
// recent ones. Backends:
//   - [MemoryStore]: bounded in-memory ring for development and tests
//   - [FileStore]: JSON files under ~/.config/flamesplit/history for the CLI
//   - [MongoStore]: shared log for server deployments
//   - [NullStore]: history disabled
//
// # Usage
//
//	store := history.NewMemoryStore(100)
//	rec := history.NewRecord("spiral.flame", 2, 4, 1, 16, 0, inputHash)
//	if err := store.Add(ctx, rec); err != nil {
//	    logger.Warn("history write failed", "error", err)
//	}
//	recent, _ := store.Recent(ctx, 10)
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultLimit is the number of records listed when no limit is given.
const DefaultLimit = 20

// Record describes one completed split.
type Record struct {
	ID        string    `json:"id" bson:"_id"`
	Filename  string    `json:"filename" bson:"filename"`
	Level     int       `json:"level" bson:"level"`
	Format    int       `json:"format" bson:"format"`
	Flames    int       `json:"flames" bson:"flames"`
	Tiles     int       `json:"tiles" bson:"tiles"`
	Skipped   int       `json:"skipped" bson:"skipped"`
	InputHash string    `json:"input_hash" bson:"input_hash"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// NewRecord creates a record with a fresh ID stamped with the current time.
func NewRecord(filename string, level, format, flames, tiles, skipped int, inputHash string) Record {
	return Record{
		ID:        uuid.NewString(),
		Filename:  filename,
		Level:     level,
		Format:    format,
		Flames:    flames,
		Tiles:     tiles,
		Skipped:   skipped,
		InputHash: inputHash,
		CreatedAt: time.Now().UTC(),
	}
}

// Store is the interface for history backends.
type Store interface {
	// Add appends a record.
	Add(ctx context.Context, rec Record) error

	// Recent returns up to n records, newest first. n <= 0 means DefaultLimit.
	Recent(ctx context.Context, n int) ([]Record, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// NullStore discards every record.
type NullStore struct{}

// NewNullStore returns a store that keeps nothing.
func NewNullStore() Store { return NullStore{} }

func (NullStore) Add(context.Context, Record) error             { return nil }
func (NullStore) Recent(context.Context, int) ([]Record, error) { return nil, nil }
func (NullStore) Close(context.Context) error                   { return nil }

func limit(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	return n
}

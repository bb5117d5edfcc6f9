/*
Package store implements persistence for shard records.

The Repository interface is the engine's only view of storage; the
SQLite implementation (modernc.org/sqlite, pure Go and CGo-free) is the
default backing store, and MemoryRepository backs tests. Every record is
independently addressable by shard id, and the in-memory index can
always be regenerated by scanning all records.
*/
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/novamem/shardhub/internal/shard"
)

// Repository is the abstract shard store.
//
// Implementations must provide exclusive-write semantics per id: a Put
// either fully replaces the record or fails, never interleaves.
type Repository interface {
	// Get returns the shard with the given id, or shard.ErrNotFound.
	Get(ctx context.Context, id string) (*shard.Shard, error)

	// Put stores or replaces a shard record.
	Put(ctx context.Context, s *shard.Shard) error

	// Delete removes a shard record. Returns shard.ErrNotFound if absent.
	Delete(ctx context.Context, id string) error

	// List returns all shard ids in ascending order.
	List(ctx context.Context) ([]string, error)

	// Close releases underlying resources.
	Close() error
}

// SearchRecord captures one search invocation for analytics.
// The query itself is stored only as a hash.
type SearchRecord struct {
	SearchID     string    `json:"search_id"`
	QueryHash    string    `json:"query_hash"`
	Timestamp    time.Time `json:"timestamp"`
	ResultsCount int       `json:"results_count"`
}

// SearchRecorder is implemented by repositories that keep search history.
type SearchRecorder interface {
	RecordSearch(ctx context.Context, rec SearchRecord) error
}

// HashQuery creates a SHA256 hash of a query string for privacy.
func HashQuery(query string) string {
	sum := sha256.Sum256([]byte(query))
	return hex.EncodeToString(sum[:])
}

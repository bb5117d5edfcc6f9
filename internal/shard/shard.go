/*
Package shard defines the core memory shard data types.

A shard is the atomic unit of externalized conversational memory: a
guiding question, an append-only conversation history, classification
tags, usage bookkeeping, and optional enrichment (summary, topics,
embedding) produced by external collaborators.
*/
package shard

import (
	"crypto/rand"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
)

// Sentinel errors shared by the store, index, and engine layers.
var (
	// ErrNotFound indicates an unknown shard id.
	ErrNotFound = errors.New("shard not found")

	// ErrSelfMerge indicates a merge where primary and secondary are the same shard.
	ErrSelfMerge = errors.New("cannot merge a shard with itself")

	// ErrDimensionMismatch indicates an embedding whose length differs from
	// the corpus-wide embedding dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Exchange is a single user/agent turn in a shard's history.
type Exchange struct {
	Timestamp time.Time `json:"timestamp"`
	UserText  string    `json:"user"`
	AgentText string    `json:"agent"`
}

// Tags holds the coarse classification labels of a shard.
// Both are free text, not closed sets.
type Tags struct {
	Intent string `json:"intent"`
	Theme  string `json:"theme"`
}

// Shard is the atomic persisted memory unit.
//
// ID is immutable and unique; it is minted once at creation and never
// reused after deletion. The engine only ever rewrites the bookkeeping
// fields (UsageCount, LastUsed, ContentHash); everything else changes
// only through explicit caller operations.
type Shard struct {
	ID              string     `json:"shard_id"`
	GuidingQuestion string     `json:"guiding_question"`
	History         []Exchange `json:"conversation_history"`
	Tags            Tags       `json:"tags"`

	// UsageCount increments exactly once per distinct load event.
	UsageCount int `json:"usage_count"`

	// LastUsed is the time of the most recent load event.
	// Zero means the shard has never been loaded.
	LastUsed time.Time `json:"last_used,omitzero"`

	// Enrichment fields, absent until an external enrichment step runs.
	Summary          string    `json:"summary,omitempty"`
	Topics           []string  `json:"topics,omitempty"`
	ConversationType string    `json:"conversation_type,omitempty"`
	Embedding        []float32 `json:"embedding,omitempty"`

	// ContentHash is derived from normalized history text and recomputed
	// on every history mutation.
	ContentHash string `json:"content_hash"`

	Archived   bool       `json:"archived"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Enriched reports whether the shard carries an embedding.
func (s *Shard) Enriched() bool {
	return len(s.Embedding) > 0
}

// Reference returns the timestamp used for recency calculations:
// LastUsed when the shard has been loaded at least once, CreatedAt otherwise.
func (s *Shard) Reference() time.Time {
	if !s.LastUsed.IsZero() {
		return s.LastUsed
	}
	return s.CreatedAt
}

// Clone returns a deep copy. Slices are copied so callers can mutate the
// result without aliasing the original.
func (s *Shard) Clone() *Shard {
	c := *s
	c.History = append([]Exchange(nil), s.History...)
	c.Topics = append([]string(nil), s.Topics...)
	c.Embedding = append([]float32(nil), s.Embedding...)
	if s.ArchivedAt != nil {
		t := *s.ArchivedAt
		c.ArchivedAt = &t
	}
	return &c
}

// NewID mints a new shard id (ULID: sortable, opaque, collision-free).
func NewID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

/*
Package index maintains the in-memory metadata projection of the shard
corpus.

The Manager is pure bookkeeping: one IndexEntry per shard, rebuilt on
every mutation and regenerable at any time by scanning the Repository
(the recovery path after a crash mid-write). It holds no opinion on
relevance.

Access follows a single reader/writer discipline: any number of
concurrent Snapshot/Get readers, mutations exclusive. A mutation
persists through the Repository before releasing the lock, so a
snapshot never observes a half-applied change.
*/
package index

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/novamem/shardhub/internal/shard"
	"github.com/novamem/shardhub/internal/store"
)

// Manager maintains the queryable projection of every shard's metadata.
type Manager struct {
	mu      sync.RWMutex
	repo    store.Repository
	entries map[string]shard.IndexEntry

	// dimension is the corpus-wide embedding length. Zero until the
	// first embedded shard is indexed; fixed for the corpus lifetime
	// once set.
	dimension int
}

// NewManager creates an empty manager over the given repository.
func NewManager(repo store.Repository) *Manager {
	return &Manager{
		repo:    repo,
		entries: make(map[string]shard.IndexEntry),
	}
}

// Rebuild regenerates the projection by scanning every shard record.
func (m *Manager) Rebuild(ctx context.Context) error {
	ids, err := m.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list shards: %w", err)
	}

	entries := make(map[string]shard.IndexEntry, len(ids))
	dimension := 0
	for _, id := range ids {
		s, err := m.repo.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load shard %s: %w", id, err)
		}
		if s.Enriched() {
			if dimension == 0 {
				dimension = len(s.Embedding)
			} else if len(s.Embedding) != dimension {
				return fmt.Errorf("shard %s has %d-dim embedding, corpus is %d-dim: %w",
					id, len(s.Embedding), dimension, shard.ErrDimensionMismatch)
			}
		}
		entries[id] = shard.EntryOf(s)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = entries
	// The projection mirrors the repository, so the dimension is
	// whatever the scan found, zero included.
	m.dimension = dimension
	return nil
}

// Upsert recomputes the shard's content hash, validates its embedding
// dimension against the corpus, persists the shard through the
// Repository, and replaces its index entry, atomically with respect to
// readers. On any error the index and repository are unchanged; in
// particular the corpus dimension is fixed only once the write of the
// first embedded shard has succeeded.
func (m *Manager) Upsert(ctx context.Context, s *shard.Shard) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s.ContentHash = shard.ContentHash(s.History)

	if s.Enriched() && m.dimension != 0 && len(s.Embedding) != m.dimension {
		return fmt.Errorf("shard %s has %d-dim embedding, corpus is %d-dim: %w",
			s.ID, len(s.Embedding), m.dimension, shard.ErrDimensionMismatch)
	}

	if err := m.repo.Put(ctx, s); err != nil {
		return err
	}
	if s.Enriched() && m.dimension == 0 {
		m.dimension = len(s.Embedding)
	}
	m.entries[s.ID] = shard.EntryOf(s)
	return nil
}

// Remove deletes the shard from the Repository and drops its entry.
func (m *Manager) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return shard.ErrNotFound
	}
	if err := m.repo.Delete(ctx, id); err != nil {
		return err
	}
	delete(m.entries, id)
	return nil
}

// Get returns the index entry for a shard id.
func (m *Manager) Get(id string) (shard.IndexEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		return shard.IndexEntry{}, shard.ErrNotFound
	}
	return e, nil
}

// Snapshot returns a consistent point-in-time view of all entries,
// ordered by id ascending.
func (m *Manager) Snapshot() []shard.IndexEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]shard.IndexEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of indexed shards.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Dimension returns the corpus-wide embedding dimension, or zero when
// no embedded shard has been indexed yet.
func (m *Manager) Dimension() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dimension
}

// RecordUse increments usage_count and sets last_used for each id,
// exactly once per id, persisting each shard through the Repository.
// This is the sole place usage bookkeeping occurs: being retrieved and
// being loaded are the same event.
func (m *Manager) RecordUse(ctx context.Context, ids []string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		s, err := m.repo.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load shard %s for usage update: %w", id, err)
		}
		s.UsageCount++
		s.LastUsed = now
		if err := m.repo.Put(ctx, s); err != nil {
			return fmt.Errorf("failed to persist usage update for %s: %w", id, err)
		}
		m.entries[id] = shard.EntryOf(s)
	}
	return nil
}

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/novamem/shardhub/internal/shard"
)

// MemoryRepository is an in-memory Repository used by tests and as a
// throwaway store when no database path is configured.
type MemoryRepository struct {
	mu     sync.RWMutex
	shards map[string]*shard.Shard
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{shards: make(map[string]*shard.Shard)}
}

// Get returns the shard with the given id.
func (r *MemoryRepository) Get(ctx context.Context, id string) (*shard.Shard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.shards[id]
	if !ok {
		return nil, shard.ErrNotFound
	}
	return s.Clone(), nil
}

// Put stores or replaces a shard record.
func (r *MemoryRepository) Put(ctx context.Context, s *shard.Shard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shards[s.ID] = s.Clone()
	return nil
}

// Delete removes a shard record.
func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.shards[id]; !ok {
		return shard.ErrNotFound
	}
	delete(r.shards, id)
	return nil
}

// List returns all shard ids in ascending order.
func (r *MemoryRepository) List(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.shards))
	for id := range r.shards {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close is a no-op for the in-memory repository.
func (r *MemoryRepository) Close() error { return nil }

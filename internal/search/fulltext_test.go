package search

import (
	"context"
	"testing"
	"time"

	"github.com/novamem/shardhub/internal/shard"
	"github.com/novamem/shardhub/internal/store"
)

func newTestDeepIndex(t *testing.T) *DeepIndex {
	t.Helper()
	idx, err := NewDeepIndex()
	if err != nil {
		t.Fatalf("failed to create deep index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestDeepIndex_SearchHistoryText(t *testing.T) {
	idx := newTestDeepIndex(t)

	s := &shard.Shard{
		ID:              "s1",
		GuidingQuestion: "What database fits this workload?",
		Tags:            shard.Tags{Theme: "engineering"},
		History: []shard.Exchange{
			{UserText: "We keep exhausting the postgres connection pool", AgentText: "Consider pgbouncer in transaction mode"},
		},
	}
	if err := idx.Index(s); err != nil {
		t.Fatalf("index failed: %v", err)
	}

	// The phrase lives only in history text, not in the question.
	hits, err := idx.Search("pgbouncer", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].ID != "s1" {
		t.Errorf("expected s1, got %s", hits[0].ID)
	}
	if hits[0].GuidingQuestion != "What database fits this workload?" {
		t.Errorf("unexpected question field: %q", hits[0].GuidingQuestion)
	}
}

func TestDeepIndex_Remove(t *testing.T) {
	idx := newTestDeepIndex(t)

	s := &shard.Shard{
		ID:      "s1",
		History: []shard.Exchange{{UserText: "unique sourdough incantation"}},
	}
	if err := idx.Index(s); err != nil {
		t.Fatalf("index failed: %v", err)
	}
	if err := idx.Remove("s1"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	hits, err := idx.Search("sourdough", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits after removal, got %d", len(hits))
	}
}

func TestDeepIndex_Reindex(t *testing.T) {
	idx := newTestDeepIndex(t)

	s := &shard.Shard{
		ID:      "s1",
		History: []shard.Exchange{{UserText: "original topic"}},
	}
	if err := idx.Index(s); err != nil {
		t.Fatalf("index failed: %v", err)
	}

	// Re-indexing the same id replaces the document.
	s.History = append(s.History, shard.Exchange{UserText: "pivoted to kubernetes"})
	if err := idx.Index(s); err != nil {
		t.Fatalf("reindex failed: %v", err)
	}

	hits, err := idx.Search("kubernetes", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("expected updated document to match, got %d hits", len(hits))
	}

	count, err := idx.Count()
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 document, got %d", count)
	}
}

func TestDeepIndex_Rebuild(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryRepository()
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	for _, s := range []*shard.Shard{
		{ID: "s1", CreatedAt: now, History: []shard.Exchange{{UserText: "postgres tuning"}}},
		{ID: "s2", CreatedAt: now, History: []shard.Exchange{{UserText: "sourdough hydration"}}},
	} {
		if err := repo.Put(ctx, s); err != nil {
			t.Fatalf("put failed: %v", err)
		}
	}

	idx := newTestDeepIndex(t)
	if err := idx.Rebuild(ctx, repo); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	count, err := idx.Count()
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 documents after rebuild, got %d", count)
	}

	hits, err := idx.Search("postgres", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "s1" {
		t.Errorf("expected s1 for postgres, got %v", hits)
	}
}

func TestDeepIndex_LimitDefault(t *testing.T) {
	idx := newTestDeepIndex(t)

	if err := idx.Index(&shard.Shard{ID: "s1", History: []shard.Exchange{{UserText: "topic"}}}); err != nil {
		t.Fatalf("index failed: %v", err)
	}

	// Zero limit falls back to the default instead of returning nothing.
	hits, err := idx.Search("topic", 0)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("expected 1 hit with default limit, got %d", len(hits))
	}
}

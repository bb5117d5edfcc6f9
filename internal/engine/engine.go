/*
Package engine wires the shard repository, index manager, retrieval
engine, and curation heuristics into the operation surface exposed to
transports (MCP server, CLI).

Mutations go through the index manager, which persists via the
repository before releasing its write lock; structural errors
(NotFound, SelfMerge, DimensionMismatch) abort with no partial state
change. Duplicate content is a logged advisory, never a write error.
*/
package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/novamem/shardhub/internal/embedding"
	"github.com/novamem/shardhub/internal/index"
	"github.com/novamem/shardhub/internal/search"
	"github.com/novamem/shardhub/internal/shard"
	"github.com/novamem/shardhub/internal/store"
)

// Defaults applied when Options leave fields zero.
const (
	DefaultIntent       = "reflection"
	DefaultTheme        = "general"
	DefaultMaxFragments = 10
)

// Options configures an Engine.
type Options struct {
	// Retrieval tunes the ranked search. Zero fields take defaults.
	Retrieval search.Config

	// MaxFragments caps history fragments returned per loaded shard.
	MaxFragments int

	// Embedder and Summarizer are optional enrichment collaborators.
	Embedder   embedding.Embedder
	Summarizer embedding.Summarizer
}

// Engine is the shard memory engine.
type Engine struct {
	repo         store.Repository
	index        *index.Manager
	retrieval    *search.Engine
	deep         *search.DeepIndex
	embedder     embedding.Embedder
	summarizer   embedding.Summarizer
	maxFragments int

	// now is replaceable for deterministic tests.
	now func() time.Time
}

// New builds an engine over the repository, rebuilding the index
// projection and the deep-search index from stored records.
func New(ctx context.Context, repo store.Repository, opts Options) (*Engine, error) {
	idx := index.NewManager(repo)
	if err := idx.Rebuild(ctx); err != nil {
		return nil, fmt.Errorf("failed to rebuild index: %w", err)
	}

	deep, err := search.NewDeepIndex()
	if err != nil {
		return nil, err
	}
	if err := deep.Rebuild(ctx, repo); err != nil {
		deep.Close()
		return nil, fmt.Errorf("failed to rebuild deep index: %w", err)
	}

	maxFragments := opts.MaxFragments
	if maxFragments <= 0 {
		maxFragments = DefaultMaxFragments
	}

	return &Engine{
		repo:         repo,
		index:        idx,
		retrieval:    search.NewEngine(idx, opts.Embedder, opts.Retrieval),
		deep:         deep,
		embedder:     opts.Embedder,
		summarizer:   opts.Summarizer,
		maxFragments: maxFragments,
		now:          time.Now,
	}, nil
}

// SetClock overrides the engine's time source. Tests only.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
	e.retrieval.SetClock(now)
}

// Close releases the repository and index resources.
func (e *Engine) Close() error {
	if err := e.deep.Close(); err != nil {
		log.Printf("Warning: failed to close deep index: %v", err)
	}
	return e.repo.Close()
}

// Index exposes the index manager for read-side callers.
func (e *Engine) Index() *index.Manager { return e.index }

// Create mints a new shard. The seed message, when non-empty, becomes
// the first history exchange.
func (e *Engine) Create(ctx context.Context, guidingQuestion, intent, theme, seed string) (*shard.Shard, error) {
	if intent == "" {
		intent = DefaultIntent
	}
	if theme == "" {
		theme = DefaultTheme
	}

	now := e.now()
	s := &shard.Shard{
		ID:              shard.NewID(),
		GuidingQuestion: guidingQuestion,
		Tags:            shard.Tags{Intent: intent, Theme: theme},
		CreatedAt:       now,
	}
	if seed != "" {
		s.History = append(s.History, shard.Exchange{Timestamp: now, UserText: seed})
	}

	if err := e.put(ctx, s); err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

// Update appends an exchange to an existing shard's history.
func (e *Engine) Update(ctx context.Context, id, userText, agentText string) (*shard.Shard, error) {
	s, err := e.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.History = append(s.History, shard.Exchange{
		Timestamp: e.now(),
		UserText:  userText,
		AgentText: agentText,
	})

	if err := e.put(ctx, s); err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

// Get returns a shard by id.
func (e *Engine) Get(ctx context.Context, id string) (*shard.Shard, error) {
	return e.repo.Get(ctx, id)
}

// Archive flips a shard's visibility flag, excluding it from default
// search scope. The shard remains fetchable by id.
func (e *Engine) Archive(ctx context.Context, id string) error {
	return e.setArchived(ctx, id, true)
}

// Unarchive restores a shard to the default search scope.
func (e *Engine) Unarchive(ctx context.Context, id string) error {
	return e.setArchived(ctx, id, false)
}

func (e *Engine) setArchived(ctx context.Context, id string, archived bool) error {
	s, err := e.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if s.Archived == archived {
		return nil
	}
	s.Archived = archived
	if archived {
		t := e.now()
		s.ArchivedAt = &t
	} else {
		s.ArchivedAt = nil
	}
	return e.put(ctx, s)
}

// Delete removes a shard from the repository and both indexes.
// The id is never reused.
func (e *Engine) Delete(ctx context.Context, id string) error {
	if err := e.index.Remove(ctx, id); err != nil {
		return err
	}
	if err := e.deep.Remove(id); err != nil {
		log.Printf("Warning: %v", err)
	}
	return nil
}

// put persists a shard through the index manager (content hash and
// dimension validation included), refreshes the deep index, and logs a
// duplicate-content advisory when the new hash collides with another
// shard.
func (e *Engine) put(ctx context.Context, s *shard.Shard) error {
	if err := e.index.Upsert(ctx, s); err != nil {
		return err
	}
	if err := e.deep.Index(s); err != nil {
		log.Printf("Warning: %v", err)
	}
	e.warnDuplicate(s)
	return nil
}

// warnDuplicate logs when a shard's content hash matches another
// shard's. Advisory only; resolution is a caller decision.
func (e *Engine) warnDuplicate(s *shard.Shard) {
	if len(s.History) == 0 {
		return
	}
	for _, entry := range e.index.Snapshot() {
		if entry.ID != s.ID && entry.ContentHash == s.ContentHash && entry.HistoryLen > 0 {
			log.Printf("Warning: shard %s duplicates content of shard %s", s.ID, entry.ID)
			return
		}
	}
}

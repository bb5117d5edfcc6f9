package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/novamem/shardhub/internal/search"
	"github.com/novamem/shardhub/internal/shard"
	"github.com/novamem/shardhub/internal/store"
)

// Search runs ranked retrieval and applies usage bookkeeping to every
// returned shard, exactly once, after the ranked list is final. Being
// retrieved and being loaded are the same event by definition.
func (e *Engine) Search(ctx context.Context, query string, opts search.Options) ([]search.Result, error) {
	results, err := e.retrieval.Search(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	if len(results) > 0 {
		ids := make([]string, len(results))
		for i, r := range results {
			ids[i] = r.ID
		}
		if err := e.index.RecordUse(ctx, ids, e.now()); err != nil {
			return nil, fmt.Errorf("failed to record usage: %w", err)
		}
	}

	e.recordSearch(ctx, query, len(results))
	return results, nil
}

// DeepSearch runs full-text retrieval over history text. Read-only: a
// deep hit is not a load event.
func (e *Engine) DeepSearch(query string, limit int) ([]search.DeepHit, error) {
	return e.deep.Search(query, limit)
}

// recordSearch appends a privacy-preserving search analytics record
// when the repository keeps history. Failures never surface to callers.
func (e *Engine) recordSearch(ctx context.Context, query string, resultCount int) {
	recorder, ok := e.repo.(store.SearchRecorder)
	if !ok {
		return
	}
	rec := store.SearchRecord{
		SearchID:     uuid.NewString(),
		QueryHash:    store.HashQuery(query),
		Timestamp:    e.now(),
		ResultsCount: resultCount,
	}
	if err := recorder.RecordSearch(ctx, rec); err != nil {
		log.Printf("Warning: failed to record search history: %v", err)
	}
}

// LoadedShard is one shard prepared for a reasoning step: metadata,
// status tags, and the most recent history fragments.
type LoadedShard struct {
	ID              string   `json:"shard_id"`
	GuidingQuestion string   `json:"guiding_question"`
	Intent          string   `json:"intent"`
	Theme           string   `json:"theme"`
	UsageCount      int      `json:"usage_count"`
	StatusTags      []string `json:"status_tags,omitempty"`
	FragmentCount   int      `json:"fragment_count"`
	Fragments       []string `json:"fragments"`
}

// LoadResult is the outcome of a Load call. Its shard ids form the
// "loaded set" that citation validation checks against.
type LoadResult struct {
	Inferred bool          `json:"inferred"`
	Shards   []LoadedShard `json:"shards"`
	Errors   []string      `json:"errors,omitempty"`
}

// Load brings shards into context for synthesis. With explicit ids it
// loads exactly those (unknown ids are reported, not fatal) and records
// one load event per shard. With no ids and autoSelect, it ranks the
// corpus against the message and loads the top hits; bookkeeping then
// happens inside Search.
func (e *Engine) Load(ctx context.Context, ids []string, message string, autoSelect bool) (*LoadResult, error) {
	out := &LoadResult{}

	if len(ids) == 0 && autoSelect {
		out.Inferred = true
		results, err := e.Search(ctx, message, search.Options{})
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			ids = append(ids, r.ID)
		}
	} else if len(ids) > 0 {
		known := ids[:0:0]
		for _, id := range ids {
			if _, err := e.index.Get(id); err != nil {
				out.Errors = append(out.Errors, fmt.Sprintf("shard %q not found", id))
				continue
			}
			known = append(known, id)
		}
		ids = known
		if len(ids) > 0 {
			if err := e.index.RecordUse(ctx, ids, e.now()); err != nil {
				return nil, fmt.Errorf("failed to record usage: %w", err)
			}
		}
	}

	now := e.now()
	for _, id := range ids {
		s, err := e.repo.Get(ctx, id)
		if err != nil {
			out.Errors = append(out.Errors, fmt.Sprintf("shard %q not found", id))
			continue
		}
		entry := shard.EntryOf(s)
		fragments := extractFragments(s, e.maxFragments)
		out.Shards = append(out.Shards, LoadedShard{
			ID:              s.ID,
			GuidingQuestion: s.GuidingQuestion,
			Intent:          s.Tags.Intent,
			Theme:           s.Tags.Theme,
			UsageCount:      s.UsageCount,
			StatusTags:      entry.StatusTags(now),
			FragmentCount:   len(fragments),
			Fragments:       fragments,
		})
	}

	return out, nil
}

// extractFragments renders the most recent history exchanges as tagged
// text fragments, newest last, capped at max.
func extractFragments(s *shard.Shard, max int) []string {
	var fragments []string
	for _, ex := range s.History {
		if ex.UserText != "" {
			fragments = append(fragments, fmt.Sprintf("[SHARD: %s] User: %s", s.ID, ex.UserText))
		}
		if ex.AgentText != "" {
			fragments = append(fragments, fmt.Sprintf("[SHARD: %s] Agent: %s", s.ID, ex.AgentText))
		}
	}
	if len(fragments) > max {
		fragments = fragments[len(fragments)-max:]
	}
	return fragments
}

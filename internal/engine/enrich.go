package engine

import (
	"context"
	"fmt"
	"log"
)

// EnrichReport summarizes an enrichment pass.
type EnrichReport struct {
	Enriched int `json:"enriched"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// Enrich runs the Summarizer and Embedder collaborators over one shard
// and persists the result. Already-enriched shards are skipped unless
// force is set. Returns true when the shard was (re)enriched.
//
// Collaborator failures leave the shard untouched; a dimension-
// mismatched embedding is rejected by the index and the shard stays
// unenriched, forcing re-enrichment with a compatible embedder.
func (e *Engine) Enrich(ctx context.Context, id string, force bool) (bool, error) {
	s, err := e.repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if s.Enriched() && !force {
		return false, nil
	}

	if e.summarizer != nil {
		enrichment, err := e.summarizer.Summarize(ctx, s)
		if err != nil {
			return false, fmt.Errorf("summarize shard %s: %w", id, err)
		}
		s.Summary = enrichment.Summary
		s.Topics = enrichment.Topics
		s.ConversationType = enrichment.ConversationType
	}

	if e.embedder != nil {
		text := s.Summary
		if text == "" {
			text = s.GuidingQuestion
		}
		vec, err := e.embedder.Embed(ctx, text)
		if err != nil {
			return false, fmt.Errorf("embed shard %s: %w", id, err)
		}
		if vec != nil {
			s.Embedding = vec
		}
	}

	if err := e.put(ctx, s); err != nil {
		return false, err
	}
	return true, nil
}

// EnrichAll runs Enrich over the whole corpus, continuing past
// per-shard failures.
func (e *Engine) EnrichAll(ctx context.Context, force bool) (EnrichReport, error) {
	ids, err := e.repo.List(ctx)
	if err != nil {
		return EnrichReport{}, err
	}

	var report EnrichReport
	for _, id := range ids {
		enriched, err := e.Enrich(ctx, id, force)
		switch {
		case err != nil:
			log.Printf("Warning: failed to enrich shard %s: %v", id, err)
			report.Failed++
		case enriched:
			report.Enriched++
		default:
			report.Skipped++
		}
	}
	return report, nil
}

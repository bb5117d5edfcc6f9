/*
Package search implements ranked retrieval over the shard index.

Scoring combines a lexical Jaccard signal (always computed) with an
optional cosine semantic signal when both the corpus and the query can
be embedded. The two scales are min-max normalized into [0, 1] within
the candidate set, fused with a configurable semantic weight, then
dampened by a bounded recency/usage decay multiplier. Ordering is a
deterministic total order: score descending, last_used descending, id
ascending.

The engine reads a consistent index snapshot and mutates nothing; usage
bookkeeping for returned shards is the caller's responsibility, applied
after the ranked list is final.
*/
package search

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/novamem/shardhub/internal/embedding"
	"github.com/novamem/shardhub/internal/index"
	"github.com/novamem/shardhub/internal/shard"
)

// Config holds the retrieval tuning knobs. Zero means "use the
// DefaultConfig value" for every field, mirroring Options.Limit; an
// explicit zero weight or floor is not expressible.
type Config struct {
	// SemanticWeight is the blend weight of the semantic score when both
	// signals exist for a shard. Default 0.7 (semantic dominant).
	SemanticWeight float64

	// DecayHalfLife is the half-life of the recency decay component.
	// Default 7 days.
	DecayHalfLife time.Duration

	// DecayFloor bounds the decay multiplier from below. Default 0.7,
	// so decay can spread scores by at most 0.3.
	DecayFloor float64

	// DefaultLimit is the result cap when the caller supplies none.
	// Default 5: precision over volume.
	DefaultLimit int
}

// DefaultConfig provides the standard retrieval tuning.
var DefaultConfig = Config{
	SemanticWeight: 0.7,
	DecayHalfLife:  7 * 24 * time.Hour,
	DecayFloor:     0.7,
	DefaultLimit:   5,
}

func (c Config) withDefaults() Config {
	d := DefaultConfig
	if c.SemanticWeight > 0 {
		d.SemanticWeight = c.SemanticWeight
	}
	if c.DecayHalfLife > 0 {
		d.DecayHalfLife = c.DecayHalfLife
	}
	if c.DecayFloor > 0 {
		d.DecayFloor = c.DecayFloor
	}
	if c.DefaultLimit > 0 {
		d.DefaultLimit = c.DefaultLimit
	}
	return d
}

// Options narrows and caps a search.
type Options struct {
	// Limit caps the number of results. Zero means the configured default.
	Limit int

	// Theme and Intent filter by case-insensitive substring match.
	Theme  string
	Intent string

	// IncludeArchived widens the scope to archived shards.
	IncludeArchived bool
}

// Result is one ranked search hit.
type Result struct {
	ID              string  `json:"shard_id"`
	Score           float64 `json:"score"`
	Method          string  `json:"method"` // "semantic" or "lexical"
	GuidingQuestion string  `json:"guiding_question"`
	Summary         string  `json:"summary,omitempty"`
	Theme           string  `json:"theme,omitempty"`
	Intent          string  `json:"intent,omitempty"`
}

// Engine ranks shards against a query using the index projection.
type Engine struct {
	index    *index.Manager
	embedder embedding.Embedder // nil degrades to pure lexical scoring
	cfg      Config

	// now is replaceable for deterministic tests.
	now func() time.Time
}

// NewEngine creates a retrieval engine over the index manager.
// embedder may be nil.
func NewEngine(idx *index.Manager, embedder embedding.Embedder, cfg Config) *Engine {
	return &Engine{
		index:    idx,
		embedder: embedder,
		cfg:      cfg.withDefaults(),
		now:      time.Now,
	}
}

// SetClock overrides the engine's time source. Tests only.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// Search returns the ranked candidate list for a query. It has no side
// effects on shared state.
func (e *Engine) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}

	candidates := e.filter(e.index.Snapshot(), opts)
	if len(candidates) == 0 {
		return nil, nil
	}

	queryTokens := Tokenize(query)
	queryVec := e.embedQuery(ctx, query)

	// Raw signals per candidate. Candidates with no signal at all (zero
	// token overlap and no embedding) are dropped before normalization
	// so the min-max scale spans only genuinely scored shards.
	scored := candidates[:0:0]
	var lexical, semantic []float64
	var hasSemantic []bool
	for i := range candidates {
		lex := Jaccard(queryTokens, entryTokens(&candidates[i]))
		embedded := queryVec != nil && candidates[i].Enriched()
		if lex == 0 && !embedded {
			continue
		}
		sem := 0.0
		if embedded {
			sem = CosineSimilarity(queryVec, candidates[i].Embedding)
		}
		scored = append(scored, candidates[i])
		lexical = append(lexical, lex)
		semantic = append(semantic, sem)
		hasSemantic = append(hasSemantic, embedded)
	}
	candidates = scored

	// Normalize each scale into [0, 1] within the candidate set, then
	// fuse: embedded shards blend both signals, the rest score lexically.
	lexNorm := minMaxNormalize(lexical)
	semNorm := normalizeSubset(semantic, hasSemantic)

	now := e.now()
	results := make([]Result, 0, len(candidates))
	order := make(map[string]shard.IndexEntry, len(candidates))
	for i := range candidates {
		var raw float64
		method := "lexical"
		if hasSemantic[i] {
			raw = e.cfg.SemanticWeight*semNorm[i] + (1-e.cfg.SemanticWeight)*lexNorm[i]
			method = "semantic"
		} else {
			raw = lexNorm[i]
		}

		score := raw * decayMultiplier(&candidates[i], now, e.cfg.DecayHalfLife, e.cfg.DecayFloor)
		results = append(results, Result{
			ID:              candidates[i].ID,
			Score:           score,
			Method:          method,
			GuidingQuestion: candidates[i].GuidingQuestion,
			Summary:         candidates[i].Summary,
			Theme:           candidates[i].Theme,
			Intent:          candidates[i].Intent,
		})
		order[candidates[i].ID] = candidates[i]
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		li := order[results[i].ID].LastUsed
		lj := order[results[j].ID].LastUsed
		if !li.Equal(lj) {
			return li.After(lj)
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// filter applies theme/intent substring filters and archived scoping.
func (e *Engine) filter(entries []shard.IndexEntry, opts Options) []shard.IndexEntry {
	out := entries[:0:0]
	for _, entry := range entries {
		if entry.Archived && !opts.IncludeArchived {
			continue
		}
		if opts.Theme != "" && !containsFold(entry.Theme, opts.Theme) {
			continue
		}
		if opts.Intent != "" && !containsFold(entry.Intent, opts.Intent) {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// embedQuery obtains the query vector, or nil when semantic scoring is
// unavailable: no embedder, no embedded shard in the corpus, embedder
// failure, or a vector that does not match the corpus dimension. All of
// these degrade to lexical scoring without error.
func (e *Engine) embedQuery(ctx context.Context, query string) []float32 {
	if e.embedder == nil {
		return nil
	}
	dim := e.index.Dimension()
	if dim == 0 {
		return nil
	}

	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("Warning: query embedding failed, falling back to lexical: %v", err)
		return nil
	}
	if vec == nil {
		return nil
	}
	if len(vec) != dim {
		log.Printf("Warning: query embedding is %d-dim, corpus is %d-dim; falling back to lexical", len(vec), dim)
		return nil
	}
	return vec
}

// normalizeSubset min-max normalizes only the marked positions,
// leaving the rest at zero.
func normalizeSubset(scores []float64, present []bool) []float64 {
	subset := make([]float64, 0, len(scores))
	for i := range scores {
		if present[i] {
			subset = append(subset, scores[i])
		}
	}
	norm := minMaxNormalize(subset)

	out := make([]float64, len(scores))
	j := 0
	for i := range scores {
		if present[i] {
			out[i] = norm[j]
			j++
		}
	}
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

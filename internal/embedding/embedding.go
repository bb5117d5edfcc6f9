/*
Package embedding defines the external enrichment collaborators.

The engine is agnostic to any specific vector dimensionality or
summarization style: an Embedder turns text into a fixed-length vector,
a Summarizer distills a shard's history into summary/topics/type. Both
are optional; their absence degrades search to pure lexical scoring
and leaves enrichment fields empty, never errors.
*/
package embedding

import (
	"context"
	"sort"
	"strings"

	"github.com/novamem/shardhub/internal/shard"
)

// Embedder produces fixed-length embedding vectors for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Enrichment is the output of a summarization pass over a shard.
type Enrichment struct {
	Summary          string   `json:"summary"`
	Topics           []string `json:"topics"`
	ConversationType string   `json:"conversation_type"`
}

// Summarizer distills a shard into an Enrichment.
type Summarizer interface {
	Summarize(ctx context.Context, s *shard.Shard) (Enrichment, error)
}

// KeywordSummarizer is a deterministic, offline Summarizer: the summary
// is the guiding question plus the opening exchange, topics are the
// most frequent non-trivial history tokens. It keeps enrichment usable
// without an LLM collaborator.
type KeywordSummarizer struct {
	// MaxTopics caps extracted topics. Defaults to 5.
	MaxTopics int
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "from": true,
	"had": true, "has": true, "have": true, "how": true, "i": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"or": true, "that": true, "the": true, "this": true, "to": true,
	"was": true, "we": true, "what": true, "when": true, "where": true,
	"which": true, "who": true, "why": true, "will": true, "with": true,
	"you": true, "your": true, "my": true, "me": true, "not": true,
	"do": true, "does": true, "did": true, "so": true, "if": true,
}

// Summarize implements Summarizer.
func (k *KeywordSummarizer) Summarize(ctx context.Context, s *shard.Shard) (Enrichment, error) {
	maxTopics := k.MaxTopics
	if maxTopics <= 0 {
		maxTopics = 5
	}

	counts := make(map[string]int)
	for _, ex := range s.History {
		for _, text := range []string{ex.UserText, ex.AgentText} {
			for _, tok := range strings.Fields(strings.ToLower(text)) {
				tok = strings.Trim(tok, ".,;:!?\"'()[]")
				if len(tok) < 3 || stopwords[tok] {
					continue
				}
				counts[tok]++
			}
		}
	}

	tokens := make([]string, 0, len(counts))
	for tok := range counts {
		tokens = append(tokens, tok)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if counts[tokens[i]] != counts[tokens[j]] {
			return counts[tokens[i]] > counts[tokens[j]]
		}
		return tokens[i] < tokens[j]
	})
	if len(tokens) > maxTopics {
		tokens = tokens[:maxTopics]
	}

	summary := strings.TrimSpace(s.GuidingQuestion)
	if len(s.History) > 0 {
		opening := strings.TrimSpace(s.History[0].UserText)
		if opening != "" {
			if len(opening) > 120 {
				opening = opening[:120] + "..."
			}
			if summary != "" {
				summary += ": "
			}
			summary += opening
		}
	}

	convType := s.Tags.Intent
	if convType == "" {
		convType = "conversation"
	}

	return Enrichment{
		Summary:          summary,
		Topics:           tokens,
		ConversationType: convType,
	}, nil
}

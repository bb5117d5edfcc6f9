package search

import (
	"strings"
	"unicode"

	"github.com/novamem/shardhub/internal/shard"
)

// Tokenize lowercases text and splits it on any non-letter,
// non-number rune, returning the set of distinct tokens.
func Tokenize(text string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	tokens := make(map[string]bool, len(fields))
	for _, f := range fields {
		tokens[f] = true
	}
	return tokens
}

// Jaccard computes intersection-over-union of two token sets.
// Either set being empty scores 0.
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	intersection := 0
	for t := range a {
		if b[t] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// entryTokens builds the lexical token set of an index entry from its
// guiding question, topics, and theme. History text stays out of the
// lexical signal; deep search covers it.
func entryTokens(e *shard.IndexEntry) map[string]bool {
	parts := []string{e.GuidingQuestion, e.Theme}
	parts = append(parts, e.Topics...)
	return Tokenize(strings.Join(parts, " "))
}

// TopicJaccard computes the Jaccard overlap of two topic lists,
// case-insensitively.
func TopicJaccard(a, b []string) float64 {
	return Jaccard(topicSet(a), topicSet(b))
}

func topicSet(topics []string) map[string]bool {
	set := make(map[string]bool, len(topics))
	for _, t := range topics {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			set[t] = true
		}
	}
	return set
}

package shard

import "time"

// Status tag boundaries, matching the index classification heuristics.
const (
	recentWindow      = 3 * 24 * time.Hour
	staleWindow       = 14 * 24 * time.Hour
	frequentThreshold = 10
)

// IndexEntry is the denormalized in-memory projection of a shard's
// metadata, without history. One entry per shard; rebuilt whenever the
// underlying shard mutates.
type IndexEntry struct {
	ID              string    `json:"shard_id"`
	GuidingQuestion string    `json:"guiding_question"`
	Intent          string    `json:"intent"`
	Theme           string    `json:"theme"`
	UsageCount      int       `json:"usage_count"`
	LastUsed        time.Time `json:"last_used,omitzero"`

	Summary          string    `json:"summary,omitempty"`
	Topics           []string  `json:"topics,omitempty"`
	ConversationType string    `json:"conversation_type,omitempty"`
	Embedding        []float32 `json:"-"`

	ContentHash string    `json:"content_hash"`
	Archived    bool      `json:"archived"`
	HistoryLen  int       `json:"history_len"`
	CreatedAt   time.Time `json:"created_at"`
}

// EntryOf projects a shard into its index entry.
func EntryOf(s *Shard) IndexEntry {
	return IndexEntry{
		ID:               s.ID,
		GuidingQuestion:  s.GuidingQuestion,
		Intent:           s.Tags.Intent,
		Theme:            s.Tags.Theme,
		UsageCount:       s.UsageCount,
		LastUsed:         s.LastUsed,
		Summary:          s.Summary,
		Topics:           append([]string(nil), s.Topics...),
		ConversationType: s.ConversationType,
		Embedding:        append([]float32(nil), s.Embedding...),
		ContentHash:      s.ContentHash,
		Archived:         s.Archived,
		HistoryLen:       len(s.History),
		CreatedAt:        s.CreatedAt,
	}
}

// Enriched reports whether the entry carries an embedding.
func (e *IndexEntry) Enriched() bool {
	return len(e.Embedding) > 0
}

// Reference returns the timestamp used for recency calculations.
func (e *IndexEntry) Reference() time.Time {
	if !e.LastUsed.IsZero() {
		return e.LastUsed
	}
	return e.CreatedAt
}

// StatusTags classifies a shard by its usage pattern: recent, stale,
// frequently_used, archived, enriched.
func (e *IndexEntry) StatusTags(now time.Time) []string {
	var tags []string
	ref := e.Reference()
	if !ref.IsZero() {
		age := now.Sub(ref)
		if age < recentWindow {
			tags = append(tags, "recent")
		}
		if age > staleWindow {
			tags = append(tags, "stale")
		}
	}
	if e.UsageCount > frequentThreshold {
		tags = append(tags, "frequently_used")
	}
	if e.Archived {
		tags = append(tags, "archived")
	}
	if e.Enriched() {
		tags = append(tags, "enriched")
	}
	return tags
}

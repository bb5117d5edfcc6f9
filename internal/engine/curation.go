package engine

import (
	"strings"
	"time"

	"github.com/novamem/shardhub/internal/curate"
	"github.com/novamem/shardhub/internal/shard"
)

// EntryView pairs an index entry with its status tags for listing.
type EntryView struct {
	shard.IndexEntry
	StatusTags []string `json:"status_tags,omitempty"`
}

// Filter narrows ListIndex output.
type Filter struct {
	Theme           string
	Intent          string
	IncludeArchived bool
}

// ListIndex returns the current index projection, id-ascending, with
// status tags attached.
func (e *Engine) ListIndex(f Filter) []EntryView {
	now := e.now()
	var out []EntryView
	for _, entry := range e.index.Snapshot() {
		if entry.Archived && !f.IncludeArchived {
			continue
		}
		if f.Theme != "" && !containsFold(entry.Theme, f.Theme) {
			continue
		}
		if f.Intent != "" && !containsFold(entry.Intent, f.Intent) {
			continue
		}
		out = append(out, EntryView{
			IndexEntry: entry,
			StatusTags: entry.StatusTags(now),
		})
	}
	return out
}

// FindDuplicates reports pairs of shards with identical content
// hashes. The engine never deletes a duplicate unilaterally.
func (e *Engine) FindDuplicates() []curate.DuplicatePair {
	return curate.FindDuplicates(e.index.Snapshot())
}

// SuggestMerges proposes same-theme shard groups whose topics overlap
// enough to be merge candidates. Advisory only.
func (e *Engine) SuggestMerges(themeThreshold int, topicOverlap float64) [][]string {
	return curate.SuggestMerges(e.index.Snapshot(), themeThreshold, topicOverlap)
}

// SuggestArchival proposes stale shards whose topics are already
// covered by fresher shards of the same theme. Advisory only.
func (e *Engine) SuggestArchival(staleness time.Duration) []string {
	return curate.SuggestArchival(e.index.Snapshot(), staleness, e.now())
}

// ValidateCitations returns cited ids absent from the loaded set.
// Callers must surface a non-empty result as a hard error class.
func (e *Engine) ValidateCitations(cited, loaded []string) []string {
	return curate.ValidateCitations(cited, loaded)
}

// Stats summarizes the corpus.
type Stats struct {
	Total     int `json:"total"`
	Archived  int `json:"archived"`
	Enriched  int `json:"enriched"`
	Dimension int `json:"dimension"`
}

// Stats reports corpus-level counts from the index projection.
func (e *Engine) Stats() Stats {
	stats := Stats{Dimension: e.index.Dimension()}
	for _, entry := range e.index.Snapshot() {
		stats.Total++
		if entry.Archived {
			stats.Archived++
		}
		if entry.Enriched() {
			stats.Enriched++
		}
	}
	return stats
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

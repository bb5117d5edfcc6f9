/*
Package curate implements corpus hygiene heuristics over the index
projection: exact duplicate detection, merge-candidate suggestion,
archive-candidate suggestion, and citation validation.

Every output here is advisory. The engine reports pairs, groups, and
candidates; acting on them (merge, archive, delete) is always a
separate, explicit caller operation.
*/
package curate

import (
	"sort"
	"strings"
	"time"

	"github.com/novamem/shardhub/internal/search"
	"github.com/novamem/shardhub/internal/shard"
)

// DuplicatePair identifies two shards with identical content hashes.
type DuplicatePair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// FindDuplicates returns every pair of shards whose content hashes are
// equal. Detection is exact-hash only; fuzzy matching is out of scope.
// Pairs are ordered (A < B) and the list is sorted for determinism.
func FindDuplicates(entries []shard.IndexEntry) []DuplicatePair {
	byHash := make(map[string][]string)
	for _, e := range entries {
		if e.HistoryLen == 0 {
			continue // empty shards all hash alike, not duplicates
		}
		byHash[e.ContentHash] = append(byHash[e.ContentHash], e.ID)
	}

	var pairs []DuplicatePair
	for _, ids := range byHash {
		if len(ids) < 2 {
			continue
		}
		sort.Strings(ids)
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				pairs = append(pairs, DuplicatePair{A: ids[i], B: ids[j]})
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	return pairs
}

// MergeDefaults hold the advisory thresholds for merge suggestion.
const (
	DefaultThemeThreshold = 3
	DefaultTopicOverlap   = 0.5
)

// SuggestMerges groups non-archived shards sharing a theme when the
// group reaches themeThreshold and the mean pairwise topic overlap
// (Jaccard) reaches topicOverlap. Groups are sorted by id; output is
// advisory only.
func SuggestMerges(entries []shard.IndexEntry, themeThreshold int, topicOverlap float64) [][]string {
	if themeThreshold <= 0 {
		themeThreshold = DefaultThemeThreshold
	}
	if topicOverlap <= 0 {
		topicOverlap = DefaultTopicOverlap
	}

	byTheme := make(map[string][]shard.IndexEntry)
	for _, e := range entries {
		if e.Archived {
			continue
		}
		theme := strings.ToLower(strings.TrimSpace(e.Theme))
		if theme == "" {
			continue
		}
		byTheme[theme] = append(byTheme[theme], e)
	}

	themes := make([]string, 0, len(byTheme))
	for theme := range byTheme {
		themes = append(themes, theme)
	}
	sort.Strings(themes)

	var groups [][]string
	for _, theme := range themes {
		group := byTheme[theme]
		if len(group) < themeThreshold {
			continue
		}
		if meanPairwiseOverlap(group) < topicOverlap {
			continue
		}
		ids := make([]string, len(group))
		for i, e := range group {
			ids[i] = e.ID
		}
		sort.Strings(ids)
		groups = append(groups, ids)
	}
	return groups
}

func meanPairwiseOverlap(group []shard.IndexEntry) float64 {
	pairs := 0
	total := 0.0
	for i := 0; i < len(group); i++ {
		for j := i + 1; j < len(group); j++ {
			total += search.TopicJaccard(group[i].Topics, group[j].Topics)
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return total / float64(pairs)
}

// DefaultStalenessWindow is the archive advisor's cutoff: shards
// untouched for longer are stale candidates.
const DefaultStalenessWindow = 14 * 24 * time.Hour

// SuggestArchival flags non-archived shards that are both stale (last
// load predates the staleness window) and absorbed: their topics are a
// subset of the union of topics across fresher shards of the same
// theme. Output is sorted by id; archiving is a separate operation and
// never deletes.
func SuggestArchival(entries []shard.IndexEntry, staleness time.Duration, now time.Time) []string {
	if staleness <= 0 {
		staleness = DefaultStalenessWindow
	}
	cutoff := now.Add(-staleness)

	// Union of topics across fresh shards, per theme.
	freshTopics := make(map[string]map[string]bool)
	for _, e := range entries {
		if e.Archived || !e.Reference().After(cutoff) {
			continue
		}
		theme := strings.ToLower(strings.TrimSpace(e.Theme))
		if freshTopics[theme] == nil {
			freshTopics[theme] = make(map[string]bool)
		}
		for _, t := range e.Topics {
			freshTopics[theme][strings.ToLower(strings.TrimSpace(t))] = true
		}
	}

	var candidates []string
	for _, e := range entries {
		if e.Archived || e.Reference().After(cutoff) {
			continue
		}
		if len(e.Topics) == 0 {
			continue // nothing to judge absorption by
		}
		theme := strings.ToLower(strings.TrimSpace(e.Theme))
		union := freshTopics[theme]
		if union == nil {
			continue
		}
		absorbed := true
		for _, t := range e.Topics {
			if !union[strings.ToLower(strings.TrimSpace(t))] {
				absorbed = false
				break
			}
		}
		if absorbed {
			candidates = append(candidates, e.ID)
		}
	}
	sort.Strings(candidates)
	return candidates
}

// ValidateCitations returns the cited ids that are not in the loaded
// set. A non-empty result means the upstream model fabricated
// provenance; callers must surface it, never silently drop it.
func ValidateCitations(cited, loaded []string) []string {
	loadedSet := make(map[string]bool, len(loaded))
	for _, id := range loaded {
		loadedSet[id] = true
	}

	seen := make(map[string]bool, len(cited))
	var invalid []string
	for _, id := range cited {
		if loadedSet[id] || seen[id] {
			continue
		}
		seen[id] = true
		invalid = append(invalid, id)
	}
	sort.Strings(invalid)
	return invalid
}

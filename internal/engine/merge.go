package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/novamem/shardhub/internal/shard"
)

// Merge absorbs the secondary shard into the primary: histories are
// interleaved in chronological order (stable, ties keep original
// relative order), topics are unioned, tags are concatenated only when
// they differ, and usage_count becomes the max of the two: continuity
// of relevance, not double-counting. The secondary shard is archived,
// not deleted, so its id survives as a back-reference.
//
// Fails with shard.ErrNotFound if either id is absent and
// shard.ErrSelfMerge when both ids are equal; validation failures leave
// both shards untouched. The secondary is archived before the primary
// is rewritten, so a write failure mid-merge never leaves the absorbed
// content live in two shards; at worst the secondary sits archived with
// its content intact, recoverable via Unarchive.
func (e *Engine) Merge(ctx context.Context, primaryID, secondaryID string) (*shard.Shard, error) {
	if primaryID == secondaryID {
		return nil, fmt.Errorf("merge %s: %w", primaryID, shard.ErrSelfMerge)
	}

	primary, err := e.repo.Get(ctx, primaryID)
	if err != nil {
		return nil, fmt.Errorf("merge primary %s: %w", primaryID, err)
	}
	secondary, err := e.repo.Get(ctx, secondaryID)
	if err != nil {
		return nil, fmt.Errorf("merge secondary %s: %w", secondaryID, err)
	}

	history := make([]shard.Exchange, 0, len(primary.History)+len(secondary.History))
	history = append(history, primary.History...)
	history = append(history, secondary.History...)
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Timestamp.Before(history[j].Timestamp)
	})
	primary.History = history

	primary.Topics = unionTopics(primary.Topics, secondary.Topics)
	primary.Tags.Theme = combineTag(primary.Tags.Theme, secondary.Tags.Theme)
	primary.Tags.Intent = combineTag(primary.Tags.Intent, secondary.Tags.Intent)

	if secondary.UsageCount > primary.UsageCount {
		primary.UsageCount = secondary.UsageCount
	}
	if secondary.LastUsed.After(primary.LastUsed) {
		primary.LastUsed = secondary.LastUsed
	}

	secondary.Archived = true
	t := e.now()
	secondary.ArchivedAt = &t
	if err := e.put(ctx, secondary); err != nil {
		return nil, err
	}

	if err := e.put(ctx, primary); err != nil {
		return nil, err
	}

	return primary.Clone(), nil
}

// unionTopics merges two topic lists, deduplicating case-insensitively
// and sorting for determinism.
func unionTopics(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, t := range append(append([]string(nil), a...), b...) {
		key := strings.ToLower(strings.TrimSpace(t))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// combineTag keeps a shared value or concatenates differing ones.
func combineTag(a, b string) string {
	if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) {
		return a
	}
	if strings.TrimSpace(a) == "" {
		return b
	}
	if strings.TrimSpace(b) == "" {
		return a
	}
	return a + "+" + b
}

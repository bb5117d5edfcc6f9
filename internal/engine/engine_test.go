package engine

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/novamem/shardhub/internal/embedding"
	"github.com/novamem/shardhub/internal/search"
	"github.com/novamem/shardhub/internal/shard"
	"github.com/novamem/shardhub/internal/store"
)

var testNow = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	eng, err := New(context.Background(), store.NewMemoryRepository(), opts)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	t.Cleanup(func() { eng.Close() })
	eng.SetClock(func() time.Time { return testNow })
	return eng
}

func TestCreate_Defaults(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Options{})

	s, err := eng.Create(ctx, "What now?", "", "", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if s.Tags.Intent != DefaultIntent {
		t.Errorf("expected default intent %q, got %q", DefaultIntent, s.Tags.Intent)
	}
	if s.Tags.Theme != DefaultTheme {
		t.Errorf("expected default theme %q, got %q", DefaultTheme, s.Tags.Theme)
	}
	if len(s.History) != 0 {
		t.Errorf("expected empty history without seed, got %d", len(s.History))
	}
	if s.ID == "" {
		t.Error("expected a minted id")
	}
	if !s.CreatedAt.Equal(testNow) {
		t.Errorf("expected creation time %v, got %v", testNow, s.CreatedAt)
	}
}

func TestCreate_Seeded(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Options{})

	s, err := eng.Create(ctx, "Trip to Lisbon", "planning", "travel", "Thinking about a week in Lisbon")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if len(s.History) != 1 {
		t.Fatalf("expected seed exchange, got %d", len(s.History))
	}
	if s.History[0].UserText != "Thinking about a week in Lisbon" {
		t.Errorf("unexpected seed text: %q", s.History[0].UserText)
	}
	if s.ContentHash != shard.ContentHash(s.History) {
		t.Error("content hash not derived from history")
	}
}

func TestUpdate_AppendsAndRehashes(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Options{})

	s, err := eng.Create(ctx, "What now?", "", "", "first")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	oldHash := s.ContentHash

	updated, err := eng.Update(ctx, s.ID, "second thought", "noted")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if len(updated.History) != 2 {
		t.Fatalf("expected 2 exchanges, got %d", len(updated.History))
	}
	if updated.ContentHash == oldHash {
		t.Error("content hash should change when history grows")
	}
}

func TestUpdate_Unknown(t *testing.T) {
	eng := newTestEngine(t, Options{})

	if _, err := eng.Update(context.Background(), "ghost", "text", ""); !errors.Is(err, shard.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSearch_RecordsUsageExactlyOnce(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Options{})

	s, err := eng.Create(ctx, "career planning", "", "career", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	results, err := eng.Search(ctx, "career planning", search.Options{})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	got, err := eng.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.UsageCount != 1 {
		t.Errorf("expected usage count 1 after one search, got %d", got.UsageCount)
	}
	if !got.LastUsed.Equal(testNow) {
		t.Errorf("expected last used %v, got %v", testNow, got.LastUsed)
	}

	// A second search is a second load event.
	if _, err := eng.Search(ctx, "career planning", search.Options{}); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	got, _ = eng.Get(ctx, s.ID)
	if got.UsageCount != 2 {
		t.Errorf("expected usage count 2 after two searches, got %d", got.UsageCount)
	}
}

func TestSearch_NoResultsNoBookkeeping(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Options{})

	s, err := eng.Create(ctx, "sourdough hydration", "", "cooking", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := eng.Search(ctx, "quantum chromodynamics", search.Options{}); err != nil {
		t.Fatalf("search failed: %v", err)
	}

	got, _ := eng.Get(ctx, s.ID)
	if got.UsageCount != 0 {
		t.Errorf("non-matching shard must not accrue usage, got %d", got.UsageCount)
	}
}

func TestGet_DoesNotCountAsLoad(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Options{})

	s, err := eng.Create(ctx, "career planning", "", "", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := eng.Get(ctx, s.ID); err != nil {
			t.Fatalf("get failed: %v", err)
		}
	}

	got, _ := eng.Get(ctx, s.ID)
	if got.UsageCount != 0 {
		t.Errorf("direct Get is not a load event, got usage %d", got.UsageCount)
	}
}

func TestLoad_ExplicitIDs(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Options{})

	a, _ := eng.Create(ctx, "first question", "", "", "alpha message")
	b, _ := eng.Create(ctx, "second question", "", "", "beta message")

	res, err := eng.Load(ctx, []string{a.ID, b.ID}, "", false)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if res.Inferred {
		t.Error("explicit load should not be marked inferred")
	}
	if len(res.Shards) != 2 {
		t.Fatalf("expected 2 loaded shards, got %d", len(res.Shards))
	}
	if len(res.Errors) != 0 {
		t.Errorf("unexpected errors: %v", res.Errors)
	}

	// Loading counts once per shard.
	got, _ := eng.Get(ctx, a.ID)
	if got.UsageCount != 1 {
		t.Errorf("expected usage count 1 after load, got %d", got.UsageCount)
	}
}

func TestLoad_UnknownIDReportedNotFatal(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Options{})

	a, _ := eng.Create(ctx, "known question", "", "", "")

	res, err := eng.Load(ctx, []string{a.ID, "ghost"}, "", false)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if len(res.Shards) != 1 {
		t.Fatalf("expected 1 loaded shard, got %d", len(res.Shards))
	}
	if len(res.Errors) != 1 {
		t.Fatalf("expected 1 error for the unknown id, got %v", res.Errors)
	}
}

func TestLoad_AutoSelect(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Options{})

	career, _ := eng.Create(ctx, "career planning next steps", "", "career", "")
	eng.Create(ctx, "sourdough hydration ratios", "", "cooking", "")

	res, err := eng.Load(ctx, nil, "career planning", true)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if !res.Inferred {
		t.Error("auto-selected load should be marked inferred")
	}
	found := false
	for _, s := range res.Shards {
		if s.ID == career.ID {
			found = true
		}
	}
	if !found {
		t.Error("expected the career shard among auto-selected loads")
	}

	// Bookkeeping happened exactly once, inside the ranked search.
	got, _ := eng.Get(ctx, career.ID)
	if got.UsageCount != 1 {
		t.Errorf("expected usage count 1 after auto-select load, got %d", got.UsageCount)
	}
}

func TestLoad_FragmentCap(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Options{MaxFragments: 4})

	s, _ := eng.Create(ctx, "long conversation", "", "", "")
	for i := 0; i < 10; i++ {
		if _, err := eng.Update(ctx, s.ID, "user turn", "agent turn"); err != nil {
			t.Fatalf("update failed: %v", err)
		}
	}

	res, err := eng.Load(ctx, []string{s.ID}, "", false)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(res.Shards) != 1 {
		t.Fatalf("expected 1 shard, got %d", len(res.Shards))
	}
	if res.Shards[0].FragmentCount != 4 {
		t.Errorf("expected 4 fragments, got %d", res.Shards[0].FragmentCount)
	}
}

func TestMerge_Law(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Options{})

	primary, _ := eng.Create(ctx, "career planning", "decision", "career", "primary opening")
	secondary, _ := eng.Create(ctx, "career growth", "reflection", "career", "secondary opening")

	// Give the secondary the higher usage count.
	if _, err := eng.Search(ctx, "career growth secondary", search.Options{Limit: 1}); err != nil {
		t.Fatalf("search failed: %v", err)
	}

	before, _ := eng.Get(ctx, secondary.ID)
	if before.UsageCount == 0 {
		t.Fatal("test setup: secondary should have usage")
	}

	merged, err := eng.Merge(ctx, primary.ID, secondary.ID)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	// History is the concatenation, chronologically ordered.
	if len(merged.History) != 2 {
		t.Errorf("expected merged history of 2, got %d", len(merged.History))
	}
	// Primary keeps its id.
	if merged.ID != primary.ID {
		t.Errorf("merge must keep the primary id, got %s", merged.ID)
	}
	// Differing intents concatenate.
	if merged.Tags.Intent != "decision+reflection" {
		t.Errorf("expected concatenated intent, got %q", merged.Tags.Intent)
	}
	// Shared theme stays as is.
	if merged.Tags.Theme != "career" {
		t.Errorf("expected shared theme kept, got %q", merged.Tags.Theme)
	}
	// Usage is the max of the two, not the sum.
	if merged.UsageCount != before.UsageCount {
		t.Errorf("expected usage %d (max), got %d", before.UsageCount, merged.UsageCount)
	}

	// The secondary is archived, not deleted.
	absorbed, err := eng.Get(ctx, secondary.ID)
	if err != nil {
		t.Fatalf("secondary must stay fetchable: %v", err)
	}
	if !absorbed.Archived {
		t.Error("secondary should be archived after merge")
	}
	if absorbed.ArchivedAt == nil {
		t.Error("secondary should carry an archive timestamp")
	}
}

func TestMerge_ChronologicalHistory(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryRepository()

	early := testNow.Add(-3 * time.Hour)
	late := testNow.Add(-1 * time.Hour)

	for _, s := range []*shard.Shard{
		{ID: "primary", CreatedAt: testNow, History: []shard.Exchange{{Timestamp: late, UserText: "later"}}},
		{ID: "secondary", CreatedAt: testNow, History: []shard.Exchange{{Timestamp: early, UserText: "earlier"}}},
	} {
		s.ContentHash = shard.ContentHash(s.History)
		if err := repo.Put(context.Background(), s); err != nil {
			t.Fatalf("put failed: %v", err)
		}
	}

	eng, err := New(ctx, repo, Options{})
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	defer eng.Close()
	eng.SetClock(func() time.Time { return testNow })

	merged, err := eng.Merge(ctx, "primary", "secondary")
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	if merged.History[0].UserText != "earlier" || merged.History[1].UserText != "later" {
		t.Errorf("history not chronological: %+v", merged.History)
	}
}

func TestMerge_TopicUnion(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryRepository()

	for _, s := range []*shard.Shard{
		{ID: "primary", CreatedAt: testNow, Topics: []string{"planning", "growth"}},
		{ID: "secondary", CreatedAt: testNow, Topics: []string{"Growth", "mentoring"}},
	} {
		if err := repo.Put(ctx, s); err != nil {
			t.Fatalf("put failed: %v", err)
		}
	}

	eng, err := New(ctx, repo, Options{})
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	defer eng.Close()
	eng.SetClock(func() time.Time { return testNow })

	merged, err := eng.Merge(ctx, "primary", "secondary")
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	// Union deduplicates case-insensitively and sorts.
	want := []string{"growth", "mentoring", "planning"}
	if len(merged.Topics) != 3 {
		t.Fatalf("expected 3 topics, got %v", merged.Topics)
	}
	for i := range want {
		if !strings.EqualFold(merged.Topics[i], want[i]) {
			t.Errorf("topic %d: expected %q, got %q", i, want[i], merged.Topics[i])
		}
	}
}

func TestMerge_Self(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Options{})

	s, _ := eng.Create(ctx, "question", "", "", "")

	if _, err := eng.Merge(ctx, s.ID, s.ID); !errors.Is(err, shard.ErrSelfMerge) {
		t.Errorf("expected ErrSelfMerge, got %v", err)
	}
}

func TestMerge_UnknownSecondaryNoPartialState(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Options{})

	primary, _ := eng.Create(ctx, "question", "decision", "career", "opening")
	before, _ := eng.Get(ctx, primary.ID)

	_, err := eng.Merge(ctx, primary.ID, "ghost")
	if !errors.Is(err, shard.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	after, _ := eng.Get(ctx, primary.ID)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("failed merge mutated the primary:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestMerge_UnknownPrimary(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Options{})

	secondary, _ := eng.Create(ctx, "question", "", "", "")
	before, _ := eng.Get(ctx, secondary.ID)

	if _, err := eng.Merge(ctx, "ghost", secondary.ID); !errors.Is(err, shard.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	after, _ := eng.Get(ctx, secondary.ID)
	if !reflect.DeepEqual(before, after) {
		t.Error("failed merge mutated the secondary")
	}
}

// failIDRepository fails Put for one shard id, passing everything else
// through.
type failIDRepository struct {
	*store.MemoryRepository
	failID string
}

func (f *failIDRepository) Put(ctx context.Context, s *shard.Shard) error {
	if f.failID != "" && s.ID == f.failID {
		return errors.New("write failed")
	}
	return f.MemoryRepository.Put(ctx, s)
}

func TestMerge_PrimaryWriteFailureLeavesNoLiveDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := &failIDRepository{MemoryRepository: store.NewMemoryRepository()}
	eng, err := New(ctx, repo, Options{})
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	defer eng.Close()
	eng.SetClock(func() time.Time { return testNow })

	primary, err := eng.Create(ctx, "primary question", "", "", "alpha content")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	secondary, err := eng.Create(ctx, "secondary question", "", "", "beta content")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	repo.failID = primary.ID
	if _, err := eng.Merge(ctx, primary.ID, secondary.ID); err == nil {
		t.Fatal("expected merge to fail on the primary write")
	}

	// The primary keeps its pre-merge history.
	storedPrimary, err := repo.Get(ctx, primary.ID)
	if err != nil {
		t.Fatalf("get primary failed: %v", err)
	}
	if len(storedPrimary.History) != 1 {
		t.Errorf("primary history changed on failed merge: %d exchanges", len(storedPrimary.History))
	}

	// The secondary is archived before the primary is rewritten, so the
	// absorbed content is never live in two shards at once; it stays
	// intact and recoverable via Unarchive.
	storedSecondary, err := repo.Get(ctx, secondary.ID)
	if err != nil {
		t.Fatalf("get secondary failed: %v", err)
	}
	if !storedSecondary.Archived {
		t.Error("secondary should be archived after a partial merge")
	}
	if len(storedSecondary.History) != 1 {
		t.Errorf("secondary history lost: %d exchanges", len(storedSecondary.History))
	}
}

func TestArchive_ExcludesFromSearchScope(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Options{})

	s, _ := eng.Create(ctx, "career planning", "", "", "")

	if err := eng.Archive(ctx, s.ID); err != nil {
		t.Fatalf("archive failed: %v", err)
	}

	results, err := eng.Search(ctx, "career planning", search.Options{})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("archived shard leaked into default search scope: %v", results)
	}

	results, err = eng.Search(ctx, "career planning", search.Options{IncludeArchived: true})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("archived shard missing from widened scope, got %d", len(results))
	}

	// Still fetchable by id.
	got, err := eng.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("archived shard must stay fetchable: %v", err)
	}
	if !got.Archived || got.ArchivedAt == nil {
		t.Error("archive flags not set")
	}
}

func TestArchive_Idempotent(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Options{})

	s, _ := eng.Create(ctx, "question", "", "", "")

	if err := eng.Archive(ctx, s.ID); err != nil {
		t.Fatalf("archive failed: %v", err)
	}
	first, _ := eng.Get(ctx, s.ID)

	if err := eng.Archive(ctx, s.ID); err != nil {
		t.Fatalf("second archive failed: %v", err)
	}
	second, _ := eng.Get(ctx, s.ID)

	if !second.ArchivedAt.Equal(*first.ArchivedAt) {
		t.Error("re-archiving should not move the archive timestamp")
	}
}

func TestUnarchive_Restores(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Options{})

	s, _ := eng.Create(ctx, "career planning", "", "", "")
	if err := eng.Archive(ctx, s.ID); err != nil {
		t.Fatalf("archive failed: %v", err)
	}
	if err := eng.Unarchive(ctx, s.ID); err != nil {
		t.Fatalf("unarchive failed: %v", err)
	}

	got, _ := eng.Get(ctx, s.ID)
	if got.Archived || got.ArchivedAt != nil {
		t.Error("unarchive did not clear flags")
	}

	results, err := eng.Search(ctx, "career planning", search.Options{})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 {
		t.Error("restored shard missing from default scope")
	}
}

func TestDelete_RemovesEverywhere(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Options{})

	s, _ := eng.Create(ctx, "ephemeral question", "", "", "")

	if err := eng.Delete(ctx, s.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := eng.Get(ctx, s.ID); !errors.Is(err, shard.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	results, err := eng.Search(ctx, "ephemeral question", search.Options{})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 0 {
		t.Error("deleted shard still searchable")
	}
}

func TestFindDuplicates_IdenticalContent(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Options{})

	a, _ := eng.Create(ctx, "first framing", "", "", "the exact same message")
	b, _ := eng.Create(ctx, "second framing", "", "", "the exact same message")

	pairs := eng.FindDuplicates()
	if len(pairs) != 1 {
		t.Fatalf("expected 1 duplicate pair, got %d", len(pairs))
	}
	got := map[string]bool{pairs[0].A: true, pairs[0].B: true}
	if !got[a.ID] || !got[b.ID] {
		t.Errorf("expected pair (%s, %s), got %+v", a.ID, b.ID, pairs[0])
	}

	// Duplicates are advisory: both shards still exist.
	if _, err := eng.Get(ctx, a.ID); err != nil {
		t.Error("duplicate detection must not remove shards")
	}
	if _, err := eng.Get(ctx, b.ID); err != nil {
		t.Error("duplicate detection must not remove shards")
	}
}

func TestValidateCitations_Scenario(t *testing.T) {
	eng := newTestEngine(t, Options{})

	invalid := eng.ValidateCitations([]string{"s1", "s2", "s9"}, []string{"s1", "s2"})
	if len(invalid) != 1 || invalid[0] != "s9" {
		t.Errorf("expected [s9], got %v", invalid)
	}
}

func TestListIndex_StatusAndScope(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Options{})

	live, _ := eng.Create(ctx, "live question", "", "career", "")
	archived, _ := eng.Create(ctx, "archived question", "", "career", "")
	if err := eng.Archive(ctx, archived.ID); err != nil {
		t.Fatalf("archive failed: %v", err)
	}

	entries := eng.ListIndex(Filter{})
	if len(entries) != 1 || entries[0].ID != live.ID {
		t.Errorf("default listing should exclude archived, got %v", entries)
	}

	entries = eng.ListIndex(Filter{IncludeArchived: true})
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries with archived, got %d", len(entries))
	}

	// Both were just created, so both are recent.
	for _, e := range entries {
		found := false
		for _, tag := range e.StatusTags {
			if tag == "recent" {
				found = true
			}
		}
		if !found {
			t.Errorf("expected recent tag on %s, got %v", e.ID, e.StatusTags)
		}
	}
}

func TestEnrich_KeywordSummarizer(t *testing.T) {
	ctx := context.Background()
	embedder := &embedding.StaticEmbedder{Vectors: map[string][]float32{}}

	eng := newTestEngine(t, Options{
		Embedder:   embedder,
		Summarizer: &embedding.KeywordSummarizer{},
	})

	s, _ := eng.Create(ctx, "What database fits?", "", "engineering", "")
	if _, err := eng.Update(ctx, s.ID, "postgres postgres postgres connection pooling", "pooling helps postgres"); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	enriched, err := eng.Enrich(ctx, s.ID, false)
	if err != nil {
		t.Fatalf("enrich failed: %v", err)
	}
	if !enriched {
		t.Fatal("expected shard to be enriched")
	}

	got, _ := eng.Get(ctx, s.ID)
	if got.Summary == "" {
		t.Error("expected a summary")
	}
	foundTopic := false
	for _, topic := range got.Topics {
		if topic == "postgres" {
			foundTopic = true
		}
	}
	if !foundTopic {
		t.Errorf("expected postgres among topics, got %v", got.Topics)
	}
}

func TestEnrich_EmbedsAndSkipsWhenDone(t *testing.T) {
	ctx := context.Background()

	// The summarizer-produced summary embeds to a fixed vector.
	embedder := &vectorForAnything{vec: []float32{0.1, 0.2}}

	eng := newTestEngine(t, Options{
		Embedder:   embedder,
		Summarizer: &embedding.KeywordSummarizer{},
	})

	s, _ := eng.Create(ctx, "question", "", "", "some content here")

	enriched, err := eng.Enrich(ctx, s.ID, false)
	if err != nil {
		t.Fatalf("enrich failed: %v", err)
	}
	if !enriched {
		t.Fatal("expected enrichment")
	}

	got, _ := eng.Get(ctx, s.ID)
	if len(got.Embedding) != 2 {
		t.Fatalf("expected a 2-dim embedding, got %v", got.Embedding)
	}

	// Already enriched, no force: skipped.
	enriched, err = eng.Enrich(ctx, s.ID, false)
	if err != nil {
		t.Fatalf("second enrich failed: %v", err)
	}
	if enriched {
		t.Error("already-enriched shard should be skipped without force")
	}

	// Force redoes it.
	enriched, err = eng.Enrich(ctx, s.ID, true)
	if err != nil {
		t.Fatalf("forced enrich failed: %v", err)
	}
	if !enriched {
		t.Error("force should re-enrich")
	}
}

// vectorForAnything embeds every text to the same vector.
type vectorForAnything struct {
	vec []float32
}

func (v *vectorForAnything) Embed(ctx context.Context, text string) ([]float32, error) {
	return v.vec, nil
}

func TestEnrichAll_ContinuesPastMissing(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Options{
		Summarizer: &embedding.KeywordSummarizer{},
	})

	eng.Create(ctx, "first", "", "", "alpha")
	eng.Create(ctx, "second", "", "", "beta")

	report, err := eng.EnrichAll(ctx, false)
	if err != nil {
		t.Fatalf("enrich all failed: %v", err)
	}
	if report.Enriched != 2 {
		t.Errorf("expected 2 enriched, got %+v", report)
	}
}

func TestDeepSearch_FindsHistoryText(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Options{})

	s, _ := eng.Create(ctx, "infra discussion", "", "engineering", "")
	if _, err := eng.Update(ctx, s.ID, "we should try pgbouncer", "agreed"); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	hits, err := eng.DeepSearch("pgbouncer", 10)
	if err != nil {
		t.Fatalf("deep search failed: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != s.ID {
		t.Errorf("expected the infra shard, got %v", hits)
	}

	// Deep search is read-only.
	got, _ := eng.Get(ctx, s.ID)
	if got.UsageCount != 0 {
		t.Errorf("deep search must not count as a load, got usage %d", got.UsageCount)
	}
}

func TestStats_Counts(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Options{})

	eng.Create(ctx, "first", "", "", "")
	archived, _ := eng.Create(ctx, "second", "", "", "")
	if err := eng.Archive(ctx, archived.ID); err != nil {
		t.Fatalf("archive failed: %v", err)
	}

	stats := eng.Stats()
	if stats.Total != 2 {
		t.Errorf("expected total 2, got %d", stats.Total)
	}
	if stats.Archived != 1 {
		t.Errorf("expected 1 archived, got %d", stats.Archived)
	}
	if stats.Enriched != 0 {
		t.Errorf("expected 0 enriched, got %d", stats.Enriched)
	}
}

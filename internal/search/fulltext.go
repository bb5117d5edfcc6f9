package search

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/novamem/shardhub/internal/shard"
	"github.com/novamem/shardhub/internal/store"
)

// DeepIndex is a full-text index over shard history text, guiding
// questions, and summaries. It answers "which shard contains this
// phrase", a different question from the ranked metadata search, which
// never reads history. In-memory only; rebuilt from the Repository at
// startup and updated on every mutation.
type DeepIndex struct {
	mu         sync.RWMutex
	bleveIndex bleve.Index
}

// DeepHit is one full-text match.
type DeepHit struct {
	ID              string  `json:"shard_id"`
	Score           float64 `json:"score"`
	GuidingQuestion string  `json:"guiding_question"`
	Theme           string  `json:"theme"`
}

// NewDeepIndex creates an empty in-memory deep index.
func NewDeepIndex() (*DeepIndex, error) {
	idx, err := bleve.NewMemOnly(buildDeepMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	return &DeepIndex{bleveIndex: idx}, nil
}

// buildDeepMapping creates the Bleve index mapping for shard documents.
func buildDeepMapping() mapping.IndexMapping {
	shardMapping := bleve.NewDocumentMapping()

	questionMapping := bleve.NewTextFieldMapping()
	shardMapping.AddFieldMappingsAt("question", questionMapping)

	summaryMapping := bleve.NewTextFieldMapping()
	shardMapping.AddFieldMappingsAt("summary", summaryMapping)

	textMapping := bleve.NewTextFieldMapping()
	shardMapping.AddFieldMappingsAt("text", textMapping)

	themeMapping := bleve.NewTextFieldMapping()
	shardMapping.AddFieldMappingsAt("theme", themeMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", shardMapping)
	return indexMapping
}

// Index adds or replaces a shard document.
func (d *DeepIndex) Index(s *shard.Shard) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	doc := deepDocument(s)
	if err := d.bleveIndex.Index(s.ID, doc); err != nil {
		return fmt.Errorf("failed to index shard %s: %w", s.ID, err)
	}
	return nil
}

// Remove drops a shard document.
func (d *DeepIndex) Remove(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.bleveIndex.Delete(id); err != nil {
		return fmt.Errorf("failed to remove shard %s from deep index: %w", id, err)
	}
	return nil
}

// Rebuild re-indexes every shard in the repository as one batch.
func (d *DeepIndex) Rebuild(ctx context.Context, repo store.Repository) error {
	ids, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list shards: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	batch := d.bleveIndex.NewBatch()
	for _, id := range ids {
		s, err := repo.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load shard %s: %w", id, err)
		}
		if err := batch.Index(s.ID, deepDocument(s)); err != nil {
			return fmt.Errorf("failed to batch shard %s: %w", s.ID, err)
		}
	}
	if err := d.bleveIndex.Batch(batch); err != nil {
		return fmt.Errorf("failed to batch index shards: %w", err)
	}
	return nil
}

// Search runs a match query over all text fields.
func (d *DeepIndex) Search(query string, limit int) ([]DeepHit, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	matchQuery := bleve.NewMatchQuery(query)
	searchRequest := bleve.NewSearchRequestOptions(matchQuery, limit, 0, false)
	searchRequest.Fields = []string{"question", "theme"}

	results, err := d.bleveIndex.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	hits := make([]DeepHit, 0, len(results.Hits))
	for _, hit := range results.Hits {
		question, _ := hit.Fields["question"].(string)
		theme, _ := hit.Fields["theme"].(string)
		hits = append(hits, DeepHit{
			ID:              hit.ID,
			Score:           hit.Score,
			GuidingQuestion: question,
			Theme:           theme,
		})
	}
	return hits, nil
}

// Count returns the number of indexed shard documents.
func (d *DeepIndex) Count() (uint64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.bleveIndex.DocCount()
}

// Close releases index resources.
func (d *DeepIndex) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.bleveIndex != nil {
		return d.bleveIndex.Close()
	}
	return nil
}

func deepDocument(s *shard.Shard) map[string]interface{} {
	var text strings.Builder
	for _, ex := range s.History {
		text.WriteString(ex.UserText)
		text.WriteString("\n")
		text.WriteString(ex.AgentText)
		text.WriteString("\n")
	}
	return map[string]interface{}{
		"question": s.GuidingQuestion,
		"summary":  s.Summary,
		"text":     text.String(),
		"theme":    s.Tags.Theme,
	}
}

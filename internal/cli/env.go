// Package cli implements the shardhub command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/novamem/shardhub/internal/config"
	"github.com/novamem/shardhub/internal/embedding"
	"github.com/novamem/shardhub/internal/engine"
	"github.com/novamem/shardhub/internal/search"
	"github.com/novamem/shardhub/internal/store"
)

// openEngine loads configuration, opens the SQLite repository, and
// builds the engine. Callers must Close the returned engine.
func openEngine(ctx context.Context) (*engine.Engine, error) {
	cfg, err := config.LoadOrCreate()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath, err = config.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo, err := store.OpenSQLite(dbPath)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(ctx, repo, engine.Options{
		Retrieval:    retrievalConfig(cfg),
		MaxFragments: cfg.MaxFragments,
		Embedder:     newEmbedder(cfg),
		Summarizer:   &embedding.KeywordSummarizer{},
	})
	if err != nil {
		repo.Close()
		return nil, err
	}
	return eng, nil
}

// retrievalConfig maps config file settings onto search tuning knobs.
// Unset fields keep package defaults.
func retrievalConfig(cfg *config.Config) search.Config {
	if cfg.Search == nil {
		return search.Config{}
	}
	return search.Config{
		SemanticWeight: cfg.Search.SemanticWeight,
		DecayHalfLife:  time.Duration(cfg.Search.DecayHalfLifeHours * float64(time.Hour)),
		DecayFloor:     cfg.Search.DecayFloor,
		DefaultLimit:   cfg.Search.DefaultLimit,
	}
}

// newEmbedder builds the Ollama embedder when configured, nil otherwise.
// A nil embedder degrades search to pure lexical scoring.
func newEmbedder(cfg *config.Config) embedding.Embedder {
	if cfg.Ollama == nil {
		return nil
	}
	return embedding.NewOllamaEmbedder(cfg.Ollama.Endpoint, cfg.Ollama.Model)
}

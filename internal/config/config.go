/*
Package config handles loading and saving shardhub configuration.

Configuration is stored in ~/.shardhub.json:

  {
    "dbPath": "~/.shardhub/shards.db",
    "search": {
      "semanticWeight": 0.7,
      "defaultLimit": 5,
      "decayHalfLifeHours": 168,
      "decayFloor": 0.7
    },
    "ollama": {
      "endpoint": "http://localhost:11434",
      "model": "nomic-embed-text"
    }
  }
*/
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the root configuration structure.
type Config struct {
	// DBPath is the SQLite database location. Empty means
	// ~/.shardhub/shards.db.
	DBPath string `json:"dbPath,omitempty"`

	// Search contains retrieval tuning options.
	Search *SearchSettings `json:"search,omitempty"`

	// Ollama configures the optional local embedding collaborator.
	// Nil disables semantic search.
	Ollama *OllamaSettings `json:"ollama,omitempty"`

	// MaxFragments caps history fragments per loaded shard.
	MaxFragments int `json:"maxFragments,omitempty"`
}

// SearchSettings contains retrieval tuning options.
type SearchSettings struct {
	// SemanticWeight blends semantic vs lexical scores (0-1).
	SemanticWeight float64 `json:"semanticWeight,omitempty"`

	// DefaultLimit caps search results when the caller supplies none.
	DefaultLimit int `json:"defaultLimit,omitempty"`

	// DecayHalfLifeHours is the recency decay half-life.
	DecayHalfLifeHours float64 `json:"decayHalfLifeHours,omitempty"`

	// DecayFloor bounds the decay multiplier from below (0-1).
	DecayFloor float64 `json:"decayFloor,omitempty"`
}

// OllamaSettings configures the local Ollama embedder.
type OllamaSettings struct {
	Endpoint string `json:"endpoint,omitempty"`
	Model    string `json:"model,omitempty"`
}

// Path returns the config file location (~/.shardhub.json).
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".shardhub.json"), nil
}

// DefaultDBPath returns the default database location.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".shardhub", "shards.db"), nil
}

// Load reads the configuration file.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadOrCreate loads the config, writing an empty one if missing.
func LoadOrCreate() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadFrom(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg = &Config{}
	if err := cfg.Save(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the given path.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

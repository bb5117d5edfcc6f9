package store

import (
	"fmt"
	"log"
)

// migration represents a single database migration.
type migration struct {
	version int
	name    string
	up      func() error
}

// runMigrations executes database schema migrations in order.
func (r *SQLiteRepository) runMigrations() error {
	if err := r.createMigrationsTable(); err != nil {
		return err
	}

	version, err := r.currentMigrationVersion()
	if err != nil {
		return err
	}

	migrations := []migration{
		{version: 1, name: "initial_schema", up: r.migration001InitialSchema},
	}

	for _, m := range migrations {
		if version < m.version {
			log.Printf("Running migration %d: %s", m.version, m.name)
			if err := m.up(); err != nil {
				return fmt.Errorf("migration %d failed: %w", m.version, err)
			}
			if err := r.setMigrationVersion(m.version, m.name); err != nil {
				return err
			}
		}
	}

	return nil
}

func (r *SQLiteRepository) createMigrationsTable() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`)
	return err
}

func (r *SQLiteRepository) currentMigrationVersion() (int, error) {
	var version int
	err := r.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	return version, err
}

func (r *SQLiteRepository) setMigrationVersion(version int, name string) error {
	_, err := r.db.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", version, name)
	return err
}

// migration001InitialSchema creates the shards and search_history tables.
func (r *SQLiteRepository) migration001InitialSchema() error {
	if _, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS shards (
			id TEXT PRIMARY KEY,
			guiding_question TEXT NOT NULL,
			history TEXT NOT NULL,
			intent TEXT NOT NULL DEFAULT '',
			theme TEXT NOT NULL DEFAULT '',
			usage_count INTEGER NOT NULL DEFAULT 0,
			last_used TEXT,
			summary TEXT NOT NULL DEFAULT '',
			topics TEXT NOT NULL DEFAULT '[]',
			conversation_type TEXT NOT NULL DEFAULT '',
			embedding TEXT NOT NULL DEFAULT 'null',
			content_hash TEXT NOT NULL,
			archived INTEGER NOT NULL DEFAULT 0,
			archived_at TEXT,
			created_at TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create shards table: %w", err)
	}

	if _, err := r.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_shards_theme ON shards(theme)
	`); err != nil {
		return fmt.Errorf("failed to create shards theme index: %w", err)
	}

	if _, err := r.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_shards_content_hash ON shards(content_hash)
	`); err != nil {
		return fmt.Errorf("failed to create shards content_hash index: %w", err)
	}

	if _, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS search_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			search_id TEXT NOT NULL UNIQUE,
			query_hash TEXT NOT NULL,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			results_count INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create search_history table: %w", err)
	}

	if _, err := r.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_search_history_timestamp
		ON search_history(timestamp DESC)
	`); err != nil {
		return fmt.Errorf("failed to create search_history timestamp index: %w", err)
	}

	return nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/novamem/shardhub/internal/shard"
)

// SQLiteRepository implements Repository backed by a SQLite database.
// One row per shard; history, topics, and embedding are serialized as
// JSON columns so a record round-trips all fields of the shard.
type SQLiteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenSQLite opens (creating if necessary) the shard database at dbPath
// and runs pending migrations.
func OpenSQLite(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	r := &SQLiteRepository{db: db}
	if err := r.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return r, nil
}

// Close closes the database connection.
func (r *SQLiteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// Get returns the shard with the given id.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*shard.Shard, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, guiding_question, history, intent, theme, usage_count,
		       last_used, summary, topics, conversation_type, embedding,
		       content_hash, archived, archived_at, created_at
		FROM shards WHERE id = ?`, id)

	s, err := scanShard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shard.ErrNotFound
	}
	return s, err
}

// Put stores or replaces a shard record.
func (r *SQLiteRepository) Put(ctx context.Context, s *shard.Shard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	history, err := json.Marshal(s.History)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	topics, err := json.Marshal(s.Topics)
	if err != nil {
		return fmt.Errorf("failed to marshal topics: %w", err)
	}

	var archivedAt any
	if s.ArchivedAt != nil {
		archivedAt = s.ArchivedAt.UTC().Format(time.RFC3339Nano)
	}
	var lastUsed any
	if !s.LastUsed.IsZero() {
		lastUsed = s.LastUsed.UTC().Format(time.RFC3339Nano)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO shards (id, guiding_question, history, intent, theme,
			usage_count, last_used, summary, topics, conversation_type,
			embedding, content_hash, archived, archived_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			guiding_question = excluded.guiding_question,
			history = excluded.history,
			intent = excluded.intent,
			theme = excluded.theme,
			usage_count = excluded.usage_count,
			last_used = excluded.last_used,
			summary = excluded.summary,
			topics = excluded.topics,
			conversation_type = excluded.conversation_type,
			embedding = excluded.embedding,
			content_hash = excluded.content_hash,
			archived = excluded.archived,
			archived_at = excluded.archived_at`,
		s.ID, s.GuidingQuestion, string(history), s.Tags.Intent, s.Tags.Theme,
		s.UsageCount, lastUsed, s.Summary, string(topics), s.ConversationType,
		vectorToJSON(s.Embedding), s.ContentHash, boolToInt(s.Archived),
		archivedAt, s.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to put shard %s: %w", s.ID, err)
	}
	return nil
}

// Delete removes a shard record.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, "DELETE FROM shards WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete shard %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return shard.ErrNotFound
	}
	return nil
}

// List returns all shard ids in ascending order.
func (r *SQLiteRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id FROM shards ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list shards: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RecordSearch records a search query for analytics.
// Failures are logged, not escalated: analytics never block a search.
func (r *SQLiteRepository) RecordSearch(ctx context.Context, rec SearchRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO search_history (search_id, query_hash, timestamp, results_count)
		VALUES (?, ?, ?, ?)`,
		rec.SearchID, rec.QueryHash,
		rec.Timestamp.UTC().Format(time.RFC3339Nano), rec.ResultsCount,
	)
	if err != nil {
		log.Printf("Warning: failed to record search: %v", err)
	}
	return nil
}

// scanner matches both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanShard(row scanner) (*shard.Shard, error) {
	var s shard.Shard
	var history, topics, embedding string
	var lastUsed, archivedAt sql.NullString
	var createdAt string
	var archived int

	err := row.Scan(&s.ID, &s.GuidingQuestion, &history, &s.Tags.Intent,
		&s.Tags.Theme, &s.UsageCount, &lastUsed, &s.Summary, &topics,
		&s.ConversationType, &embedding, &s.ContentHash, &archived,
		&archivedAt, &createdAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(history), &s.History); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history for %s: %w", s.ID, err)
	}
	if err := json.Unmarshal([]byte(topics), &s.Topics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal topics for %s: %w", s.ID, err)
	}
	vec, err := jsonToVector(embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal embedding for %s: %w", s.ID, err)
	}
	s.Embedding = vec
	s.Archived = archived == 1

	if lastUsed.Valid {
		t, err := time.Parse(time.RFC3339Nano, lastUsed.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse last_used for %s: %w", s.ID, err)
		}
		s.LastUsed = t
	}
	if archivedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, archivedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse archived_at for %s: %w", s.ID, err)
		}
		s.ArchivedAt = &t
	}
	s.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at for %s: %w", s.ID, err)
	}

	return &s, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// vectorToJSON converts a float32 vector to JSON for storage.
// A nil vector is stored as "null" and round-trips back to nil.
func vectorToJSON(vector []float32) string {
	data, err := json.Marshal(vector)
	if err != nil {
		log.Printf("Warning: failed to marshal vector: %v", err)
		return "null"
	}
	return string(data)
}

// jsonToVector parses JSON storage back to a float32 vector.
func jsonToVector(jsonStr string) ([]float32, error) {
	if jsonStr == "" {
		return nil, nil
	}
	var vector []float32
	if err := json.Unmarshal([]byte(jsonStr), &vector); err != nil {
		return nil, err
	}
	return vector, nil
}

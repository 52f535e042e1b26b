// Package store persists raw model responses keyed by image content hash,
// so re-running a batch does not re-issue API calls for unchanged images.
// Only the raw response text is cached; parsed records are always rebuilt
// from it by the caller.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Response is a cached raw model response for one image.
type Response struct {
	ID          int64  `json:"id"`
	ContentHash string `json:"content_hash"`
	Model       string `json:"model"`
	Prompt      string `json:"prompt"`
	RawContent  string `json:"raw_content"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	CreatedAt   string `json:"created_at"`
}

// Key identifies one cache entry. The content hash covers the image bytes;
// model and prompt are part of the key because either changes the output.
type Key struct {
	ContentHash string
	Model       string
	Prompt      string
}

// Store wraps the SQLite database holding the response cache.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at the given path and
// initialises the schema.
func Open(dbPath string) (*Store, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	// Connection pool settings for SQLite.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}

	// Run pending migrations.
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Get looks up a cached response. The second return value reports whether
// the key was present.
func (s *Store) Get(ctx context.Context, key Key) (*Response, bool, error) {
	var r Response
	err := s.db.QueryRowContext(ctx, `
		SELECT id, content_hash, model, prompt, raw_content, width, height, created_at
		FROM responses
		WHERE content_hash = ? AND model = ? AND prompt = ?`,
		key.ContentHash, key.Model, key.Prompt,
	).Scan(&r.ID, &r.ContentHash, &r.Model, &r.Prompt, &r.RawContent, &r.Width, &r.Height, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying response cache: %w", err)
	}
	return &r, true, nil
}

// Put stores (or replaces) a raw response for the given key.
func (s *Store) Put(ctx context.Context, key Key, rawContent string, width, height int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO responses (content_hash, model, prompt, raw_content, width, height)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(content_hash, model, prompt) DO UPDATE SET
			raw_content = excluded.raw_content,
			width = excluded.width,
			height = excluded.height,
			created_at = CURRENT_TIMESTAMP`,
		key.ContentHash, key.Model, key.Prompt, rawContent, width, height,
	)
	if err != nil {
		return fmt.Errorf("storing response: %w", err)
	}
	return nil
}

// Delete removes a cached response. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, key Key) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM responses WHERE content_hash = ? AND model = ? AND prompt = ?`,
		key.ContentHash, key.Model, key.Prompt,
	)
	if err != nil {
		return fmt.Errorf("deleting response: %w", err)
	}
	return nil
}

// Count returns the number of cached responses.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM responses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting responses: %w", err)
	}
	return n, nil
}

package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/kotoba/internal/translation"
)

// Entry is one answered translation
type Entry struct {
	ID            string
	Text          string
	Language      string
	Backend       string
	Hiragana      string
	Romanji       string
	Translation   string
	Pronunciation string
	HasAudio      bool
	CreatedAt     time.Time
}

// Store is the sqlite-backed translation log
type Store struct {
	db *sql.DB
}

// Open opens (and creates if needed) the log at path
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS translations (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		language TEXT NOT NULL DEFAULT '',
		backend TEXT NOT NULL DEFAULT '',
		hiragana TEXT NOT NULL DEFAULT '',
		romanji TEXT NOT NULL DEFAULT '',
		translation TEXT NOT NULL DEFAULT '',
		pronunciation TEXT NOT NULL DEFAULT '',
		has_audio INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_translations_created ON translations(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends an answered translation and returns its id
func (s *Store) Record(ctx context.Context, text, language, backend string, resp *translation.Response) (string, error) {
	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO translations
			(id, text, language, backend, hiragana, romanji, translation, pronunciation, has_audio, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, text, language, backend,
		resp.Hiragana, resp.Romanji, resp.Translation, resp.Pronunciation,
		resp.HasAudio(), time.Now().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record translation: %w", err)
	}

	return id, nil
}

// Recent returns up to limit entries, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, language, backend, hiragana, romanji, translation, pronunciation, has_audio, created_at
		FROM translations
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created int64
		if err := rows.Scan(&e.ID, &e.Text, &e.Language, &e.Backend,
			&e.Hiragana, &e.Romanji, &e.Translation, &e.Pronunciation,
			&e.HasAudio, &created); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.CreatedAt = time.Unix(0, created)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

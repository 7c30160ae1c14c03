package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/quillforge/critique/internal/critique"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS analyses (
    id TEXT PRIMARY KEY,
    book_id TEXT NOT NULL,
    scope TEXT NOT NULL,
    chapter_id TEXT NOT NULL DEFAULT '',
    record TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_slot
    ON analyses(book_id, scope, chapter_id, created_at);
`

// SQLiteStore persists analysis records. History is additive: every run
// inserts a new row, and the latest row for a (book, scope, chapter) slot
// supersedes the rest. Concurrent writes to the same slot are
// last-writer-wins.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertAnalysis writes one complete record in a single transaction. A failed
// write leaves previous records for the slot untouched.
func (s *SQLiteStore) UpsertAnalysis(ctx context.Context, rec *critique.ManuscriptAnalysis) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO analyses (id, book_id, scope, chapter_id, record, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.BookID, string(rec.Scope), rec.ChapterID, string(payload), rec.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetLatestAnalysis returns the newest record for the slot, or nil when the
// slot has never been analyzed.
func (s *SQLiteStore) GetLatestAnalysis(ctx context.Context, key critique.ScopeKey) (*critique.ManuscriptAnalysis, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT record FROM analyses
		 WHERE book_id = ? AND scope = ? AND chapter_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		key.BookID, string(key.Scope), key.ChapterID,
	)

	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query latest analysis: %w", err)
	}
	return decodeRecord(payload)
}

// ListAnalyses returns every record for the slot, newest first, for trend
// tracking across revisions.
func (s *SQLiteStore) ListAnalyses(ctx context.Context, key critique.ScopeKey) ([]*critique.ManuscriptAnalysis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT record FROM analyses
		 WHERE book_id = ? AND scope = ? AND chapter_id = ?
		 ORDER BY created_at DESC, id DESC`,
		key.BookID, string(key.Scope), key.ChapterID,
	)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var records []*critique.ManuscriptAnalysis
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		rec, err := decodeRecord(payload)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func decodeRecord(payload string) (*critique.ManuscriptAnalysis, error) {
	var rec critique.ManuscriptAnalysis
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	return &rec, nil
}

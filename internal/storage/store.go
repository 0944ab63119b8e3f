// Package storage persists run history and push records in SQLite.
// History is a collaborator of the CLI layer: the aggregation core never
// reads it.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/trendpulse/trendpulse/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	fetch_time     TIMESTAMP NOT NULL,
	total_raw      INTEGER NOT NULL,
	total_filtered INTEGER NOT NULL,
	created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS run_items (
	run_id           TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position         INTEGER NOT NULL,
	title            TEXT NOT NULL,
	url              TEXT NOT NULL,
	source_id        TEXT NOT NULL,
	source_name      TEXT NOT NULL,
	rank             INTEGER NOT NULL,
	hotness          REAL NOT NULL,
	matched_keywords TEXT,
	PRIMARY KEY (run_id, position)
);

CREATE TABLE IF NOT EXISTS push_records (
	day       TEXT PRIMARY KEY,
	pushed_at TIMESTAMP NOT NULL
);
`

// Store is the SQLite-backed history and push-record store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (and if needed creates) the database under dataDir.
// An empty dataDir defaults to ~/.trendpulse/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".trendpulse", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SaveRun records one aggregation run and its final items.
func (s *Store) SaveRun(ctx context.Context, runID string, news *model.AggregatedNews) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, fetch_time, total_raw, total_filtered) VALUES (?, ?, ?, ?)`,
		runID, news.FetchTime.UTC(), news.TotalRaw, news.TotalFiltered)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, item := range news.Items {
		var keywords []byte
		if len(item.MatchedKeywords) > 0 {
			keywords, err = json.Marshal(item.MatchedKeywords)
			if err != nil {
				return fmt.Errorf("marshal keywords: %w", err)
			}
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_items (run_id, position, title, url, source_id, source_name, rank, hotness, matched_keywords)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, i, item.Title, item.URL, item.SourceID, item.SourceName, item.Rank, item.Hotness, nullableString(keywords))
		if err != nil {
			return fmt.Errorf("insert item %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// LatestItems returns the items of the most recent run, or an empty slice
// when no history exists yet.
func (s *Store) LatestItems(ctx context.Context) ([]model.NewsItem, error) {
	var runID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM runs ORDER BY created_at DESC, id DESC LIMIT 1`).Scan(&runID)
	if err == sql.ErrNoRows {
		return []model.NewsItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT title, url, source_id, source_name, rank, hotness, matched_keywords
		 FROM run_items WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("run items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.NewsItem
	for rows.Next() {
		var item model.NewsItem
		var keywords sql.NullString
		if err := rows.Scan(&item.Title, &item.URL, &item.SourceID, &item.SourceName,
			&item.Rank, &item.Hotness, &keywords); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if keywords.Valid && keywords.String != "" {
			if err := json.Unmarshal([]byte(keywords.String), &item.MatchedKeywords); err != nil {
				return nil, fmt.Errorf("unmarshal keywords: %w", err)
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// HasPushedOn reports whether a notification push was recorded for the day
// (formatted 2006-01-02).
func (s *Store) HasPushedOn(ctx context.Context, day string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM push_records WHERE day = ?`, day).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query push record: %w", err)
	}
	return count > 0, nil
}

// MarkPushed records a push for the day; repeated marks are idempotent.
func (s *Store) MarkPushed(ctx context.Context, day string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO push_records (day, pushed_at) VALUES (?, ?)
		 ON CONFLICT(day) DO UPDATE SET pushed_at = excluded.pushed_at`,
		day, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark pushed: %w", err)
	}
	return nil
}

func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

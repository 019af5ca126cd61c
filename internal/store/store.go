// Package store archives scraped press releases in SQLite, keyed by article
// URL so repeated scrapes stay idempotent.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/presswatch/presswatch/internal/shared/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS releases (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	country      TEXT NOT NULL,
	title        TEXT NOT NULL,
	url          TEXT NOT NULL UNIQUE,
	publish_date TEXT NOT NULL,
	doc_number   TEXT NOT NULL DEFAULT '',
	content      TEXT NOT NULL DEFAULT '',
	scraped_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_releases_country ON releases(country, publish_date DESC);
`

// Store is the SQLite-backed release archive.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the archive at path. Use ":memory:"
// for an ephemeral archive.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open release store: %w", err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent scrapes.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init release store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveBatch upserts releases and returns the ones not previously archived.
func (s *Store) SaveBatch(ctx context.Context, releases []types.PressRelease) ([]types.PressRelease, error) {
	if len(releases) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO releases (country, title, url, publish_date, doc_number, content, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			publish_date = excluded.publish_date,
			doc_number = excluded.doc_number,
			content = excluded.content,
			scraped_at = excluded.scraped_at`)
	if err != nil {
		return nil, fmt.Errorf("prepare save: %w", err)
	}
	defer stmt.Close()

	var fresh []types.PressRelease
	for _, r := range releases {
		known, err := s.existsTx(ctx, tx, r.URL)
		if err != nil {
			return nil, err
		}

		scrapedAt := r.ScrapedAt
		if scrapedAt.IsZero() {
			scrapedAt = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx,
			r.Country, r.Title, r.URL, r.PublishDate, r.DocNumber, r.Content, scrapedAt,
		); err != nil {
			return nil, fmt.Errorf("save release %s: %w", r.URL, err)
		}
		if !known {
			fresh = append(fresh, r)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit save: %w", err)
	}
	return fresh, nil
}

func (s *Store) existsTx(ctx context.Context, tx *sql.Tx, url string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM releases WHERE url = ?`, url).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check release %s: %w", url, err)
	}
	return true, nil
}

// Recent returns the newest releases, optionally filtered by country.
func (s *Store) Recent(ctx context.Context, country string, limit int) ([]types.PressRelease, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT country, title, url, publish_date, doc_number, content, scraped_at
		FROM releases`
	args := []interface{}{}
	if country != "" {
		query += ` WHERE country = ?`
		args = append(args, country)
	}
	query += ` ORDER BY publish_date DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent releases: %w", err)
	}
	defer rows.Close()

	var out []types.PressRelease
	for rows.Next() {
		var r types.PressRelease
		if err := rows.Scan(&r.Country, &r.Title, &r.URL, &r.PublishDate, &r.DocNumber, &r.Content, &r.ScrapedAt); err != nil {
			return nil, fmt.Errorf("scan release: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of archived releases.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM releases`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count releases: %w", err)
	}
	return n, nil
}

// Stats returns archive statistics for health reporting.
func (s *Store) Stats(ctx context.Context) map[string]interface{} {
	n, err := s.Count(ctx)
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}
	return map[string]interface{}{"releases": n}
}

package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const timeFormat = "2006-01-02T15:04:05.000Z"

// SQLite caches responses in the response_cache table of a migrated
// database. Entries survive restarts until their TTL elapses.
type SQLite struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLite creates a cache over db. A zero TTL never expires entries.
func NewSQLite(db *sql.DB, ttl time.Duration) *SQLite {
	return &SQLite{db: db, ttl: ttl, now: time.Now}
}

// Get returns the body stored under key, ignoring expired rows.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT body FROM response_cache
		WHERE key = ? AND (expires_at IS NULL OR expires_at > ?)`,
		key, s.now().UTC().Format(timeFormat),
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cached response: %w", err)
	}
	return body, true, nil
}

// Set stores body under key, replacing any previous entry.
func (s *SQLite) Set(ctx context.Context, key string, body []byte) error {
	now := s.now().UTC()
	var expires sql.NullString
	if s.ttl > 0 {
		expires = sql.NullString{String: now.Add(s.ttl).Format(timeFormat), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO response_cache (key, body, created_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			body = excluded.body,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`,
		key, body, now.Format(timeFormat), expires,
	)
	if err != nil {
		return fmt.Errorf("storing cached response: %w", err)
	}
	return nil
}

// Prune deletes expired entries and returns how many were removed.
func (s *SQLite) Prune(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM response_cache WHERE expires_at IS NOT NULL AND expires_at <= ?`,
		s.now().UTC().Format(timeFormat))
	if err != nil {
		return 0, fmt.Errorf("pruning response cache: %w", err)
	}
	return res.RowsAffected()
}

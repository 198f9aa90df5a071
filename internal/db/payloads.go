// ABOUTME: SQLite-backed payload cache store
// ABOUTME: Keeps fetched payloads in the payloads table

package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/harper/vkattach/internal/cache"
)

// PayloadStore implements cache.Store on the payloads table.
type PayloadStore struct {
	db *sql.DB
}

var (
	_ cache.Store   = (*PayloadStore)(nil)
	_ cache.Lister  = (*PayloadStore)(nil)
	_ cache.Deleter = (*PayloadStore)(nil)
)

// NewPayloadStore creates a store on an initialized database.
func NewPayloadStore(db *sql.DB) *PayloadStore {
	return &PayloadStore{db: db}
}

// Get returns the payload stored under key, or cache.ErrMiss.
func (s *PayloadStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM payloads WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cache.ErrMiss
	}
	return data, err
}

// Put stores value under key, replacing any previous payload.
func (s *PayloadStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payloads (key, data, stored_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, stored_at = excluded.stored_at`,
		key, value, time.Now())
	return err
}

// Delete removes the payload stored under key, or returns cache.ErrMiss.
func (s *PayloadStore) Delete(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM payloads WHERE key = ?`, key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return cache.ErrMiss
	}
	return nil
}

// Entries lists stored payloads whose key starts with prefix.
func (s *PayloadStore) Entries(ctx context.Context, prefix string) ([]cache.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, length(data), stored_at FROM payloads
		WHERE substr(key, 1, length(?)) = ? ORDER BY key`, prefix, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []cache.Entry
	for rows.Next() {
		var e cache.Entry
		if err := rows.Scan(&e.Key, &e.Size, &e.StoredAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

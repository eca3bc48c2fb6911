package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/kailas-cloud/storeqa/internal/db"
)

const (
	kvGetSQL = `SELECT value FROM storeqa_kv WHERE key = $1 AND (expires_at IS NULL OR expires_at > now())`
	kvSetSQL = `INSERT INTO storeqa_kv (key, value, expires_at) VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`
)

// Get retrieves a value by key. Expired rows read as missing.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	if err := s.db.QueryRowContext(ctx, kvGetSQL, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return value, nil
}

// Set stores a value at the given key without expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, kvSetSQL, key, value, nil); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// SetWithTTL stores a value that expires after ttl. A non-positive ttl stores it forever.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return s.Set(ctx, key, value)
	}
	expires := time.Now().Add(ttl).UTC()
	if _, err := s.db.ExecContext(ctx, kvSetSQL, key, value, expires); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

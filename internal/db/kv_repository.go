package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// KVRepository keeps string entries in a single table. The queries run
// unchanged on postgres (lib/pq) and sqlite3.
type KVRepository struct {
	db *sql.DB
}

func NewKVRepository(db *sql.DB) *KVRepository {
	return &KVRepository{db: db}
}

func (r *KVRepository) EnsureSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS kv_entries (
	  key TEXT PRIMARY KEY,
	  value TEXT NOT NULL
	)`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create kv_entries: %w", err)
	}
	return nil
}

func (r *KVRepository) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM kv_entries WHERE key = $1`
	var value string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *KVRepository) Set(ctx context.Context, key, value string) error {
	query := `INSERT INTO kv_entries (key, value) VALUES ($1, $2)
	 ON CONFLICT (key) DO UPDATE SET value = excluded.value`
	_, err := r.db.ExecContext(ctx, query, key, value)
	return err
}

package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgPool is the subset of pgxpool.Pool the adapter needs. pgxmock satisfies
// it in tests.
type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres implements Store over an appkit_kv table:
//
//	CREATE TABLE appkit_kv (
//	    key        TEXT PRIMARY KEY,
//	    value      TEXT NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type Postgres struct {
	pool pgPool
}

// NewPostgres creates a PostgreSQL-backed store.
func NewPostgres(pool pgPool) *Postgres {
	return &Postgres{pool: pool}
}

// Get returns the value for key, or ErrKeyNotFound.
func (p *Postgres) Get(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM appkit_kv WHERE key = $1`

	var value string
	if err := p.pool.QueryRow(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("select kv %q: %w", key, err)
	}
	return value, nil
}

// Set upserts the value for key.
func (p *Postgres) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO appkit_kv (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

	if _, err := p.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("upsert kv %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Missing keys are ignored.
func (p *Postgres) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM appkit_kv WHERE key = $1`

	if _, err := p.pool.Exec(ctx, query, key); err != nil {
		return fmt.Errorf("delete kv %q: %w", key, err)
	}
	return nil
}

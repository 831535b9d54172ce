package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres keeps every key as a JSONB row of entity_store. Schema comes from
// the embedded migrations in pkg/database.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Backend = (*Postgres)(nil)

// NewPostgres wraps a migrated pool. Close releases the pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return pgGet(ctx, p.pool, key, false)
}

func (p *Postgres) Put(ctx context.Context, key string, value []byte) error {
	return pgPut(ctx, p.pool, key, value)
}

// Update serializes writers on key with a transaction-scoped advisory lock,
// so the read-modify-write also covers keys that have no row yet.
func (p *Postgres) Update(ctx context.Context, key string, fn UpdateFunc) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("lock %s: %w", key, err)
	}
	cur, ok, err := pgGet(ctx, tx, key, true)
	if err != nil {
		return err
	}
	next, err := fn(cur, ok)
	if errors.Is(err, ErrSkipWrite) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := pgPut(ctx, tx, key, next); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func pgGet(ctx context.Context, q pgxQuerier, key string, forUpdate bool) ([]byte, bool, error) {
	query := `SELECT payload::text FROM entity_store WHERE key = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var payload string
	err := q.QueryRow(ctx, query, key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select %s: %w", key, err)
	}
	return []byte(payload), true, nil
}

func pgPut(ctx context.Context, q pgxQuerier, key string, value []byte) error {
	_, err := q.Exec(ctx, `INSERT INTO entity_store (key, payload, revision, updated_at)
		VALUES ($1, $2::jsonb, 1, NOW())
		ON CONFLICT (key) DO UPDATE
		SET payload = EXCLUDED.payload, revision = entity_store.revision + 1, updated_at = NOW()`,
		key, string(value))
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

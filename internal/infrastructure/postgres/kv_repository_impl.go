package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/nutriquest/internal/domain/repository"
)

type KeyValueRepository struct {
	pool *pgxpool.Pool
}

func NewKeyValueRepository(pool *pgxpool.Pool) *KeyValueRepository {
	return &KeyValueRepository{pool: pool}
}

const upsertSQL = `
	INSERT INTO kv_entries (key, value, updated_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
`

func (r *KeyValueRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	row := r.pool.QueryRow(ctx, `SELECT value FROM kv_entries WHERE key = $1`, key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", repository.ErrKeyNotFound
		}
		return "", err
	}
	return value, nil
}

func (r *KeyValueRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.pool.Exec(ctx, upsertSQL, key, value, time.Now().UTC())
	return err
}

func (r *KeyValueRepository) SetMany(ctx context.Context, entries map[string]string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for k, v := range entries {
		batch.Queue(upsertSQL, k, v, now)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *KeyValueRepository) Delete(ctx context.Context, key string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, key)
	return err
}

// Close is a no-op; the pool is owned by main.
func (r *KeyValueRepository) Close() error { return nil }

var _ repository.KeyValueRepository = (*KeyValueRepository)(nil)

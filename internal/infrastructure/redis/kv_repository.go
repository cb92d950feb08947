package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/oksasatya/nutriquest/internal/domain/repository"
)

// KeyValueRepository stores entries as plain redis strings under a shared prefix, without TTL.
type KeyValueRepository struct {
	rdb    *goredis.Client
	prefix string
}

func NewKeyValueRepository(rdb *goredis.Client, prefix string) *KeyValueRepository {
	return &KeyValueRepository{rdb: rdb, prefix: prefix}
}

func (r *KeyValueRepository) key(k string) string { return r.prefix + k }

func (r *KeyValueRepository) Get(ctx context.Context, key string) (string, error) {
	v, err := r.rdb.Get(ctx, r.key(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", repository.ErrKeyNotFound
	}
	return v, err
}

func (r *KeyValueRepository) Set(ctx context.Context, key, value string) error {
	return r.rdb.Set(ctx, r.key(key), value, 0).Err()
}

func (r *KeyValueRepository) SetMany(ctx context.Context, entries map[string]string) error {
	pipe := r.rdb.TxPipeline()
	for k, v := range entries {
		pipe.Set(ctx, r.key(k), v, 0)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *KeyValueRepository) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.key(key)).Err()
}

// Close is a no-op; the client is shared with the rate limiter and closed by main.
func (r *KeyValueRepository) Close() error { return nil }

var _ repository.KeyValueRepository = (*KeyValueRepository)(nil)

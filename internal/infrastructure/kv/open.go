// Package kv selects and opens the configured key-value storage driver.
package kv

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/nutriquest/config"
	"github.com/oksasatya/nutriquest/internal/domain/repository"
	"github.com/oksasatya/nutriquest/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/nutriquest/internal/infrastructure/postgres"
	redisinfra "github.com/oksasatya/nutriquest/internal/infrastructure/redis"
	sqliteinfra "github.com/oksasatya/nutriquest/internal/infrastructure/sqlite"
)

// Open builds the storage driver named by cfg.StorageDriver. The returned func releases it.
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger, rdb *goredis.Client) (repository.KeyValueRepository, func(), error) {
	switch cfg.StorageDriver {
	case "sqlite":
		r, err := sqliteinfra.NewKeyValueRepository(cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { _ = r.Close() }, nil
	case "redis":
		if rdb == nil {
			return nil, nil, errors.New("REDIS_ADDR is required for the redis driver")
		}
		return redisinfra.NewKeyValueRepository(rdb, cfg.KVPrefix), func() {}, nil
	case "postgres":
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.AppName, cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			return nil, nil, err
		}
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migration failed: %w", err)
		}
		return pginfra.NewKeyValueRepository(pool), pool.Close, nil
	case "memory":
		if logger != nil {
			logger.Warn("memory storage selected; state is lost on exit")
		}
		return memory.NewKeyValueRepository(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}

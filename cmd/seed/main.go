package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/oksasatya/nutriquest/config"
	"github.com/oksasatya/nutriquest/internal/domain/entity"
	"github.com/oksasatya/nutriquest/internal/domain/repository"
	"github.com/oksasatya/nutriquest/internal/infrastructure/kv"
	"github.com/oksasatya/nutriquest/pkg/helpers"
)

// seed writes the demo dashboard state into the configured storage driver,
// overwriting whatever is there.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	var rdb *goredis.Client
	if cfg.RedisAddr != "" {
		rdb = helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = rdb.Close() }()
	}

	repo, closeRepo, err := kv.Open(ctx, cfg, logger, rdb)
	if err != nil {
		log.Fatalf("failed to open %s storage: %v", cfg.StorageDriver, err)
	}
	defer closeRepo()

	profile := entity.UserProfile{
		Name:       "Jane Doe",
		Email:      "jane.doe@example.com",
		Bio:        "Trying to eat a little better every week.",
		Phone:      "+15555550123",
		Avatar:     "https://i.pravatar.cc/300",
		Coins:      245,
		Level:      12,
		XPProgress: 65,
	}
	completed := []string{"7", "8", "meal-1"}

	pb, _ := json.Marshal(profile)
	cb, _ := json.Marshal(completed)
	if err := repo.SetMany(ctx, map[string]string{
		repository.KeyIsAuthenticated:     "true",
		repository.KeyUserInfo:            string(pb),
		repository.KeyCompletedChallenges: string(cb),
	}); err != nil {
		log.Fatalf("failed to seed profile: %v", err)
	}
	fmt.Printf("seeded %s storage: name=%s coins=%d level=%d completed=%v\n", cfg.StorageDriver, profile.Name, profile.Coins, profile.Level, completed)
}

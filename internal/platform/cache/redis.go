package cache

import (
	"context"
	"fmt"

	"github.com/Aniketv10/E-Commerce-Back-End/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

// Connect builds the Redis client backing the session denylist.
func Connect(cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("could not connect to Redis: %w", err)
	}
	return rdb, nil
}

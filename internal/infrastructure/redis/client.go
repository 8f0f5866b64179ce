package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/braymix/panda/internal/config"
)

// ClientOptions builds the client options. REDIS_URL wins over the
// REDIS_HOST/PORT/PASSWORD/DB pieces.
func ClientOptions(cfg *config.RedisConfig) (*redis.Options, error) {
	if cfg.URL != "" {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}, nil
}

// NewClient creates a Redis client
func NewClient(cfg *config.RedisConfig) (*redis.Client, error) {
	opts, err := ClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

// Ping checks the Redis connection
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	return nil
}

package database

import (
	"context"

	"github.com/go-redis/redis/v8"

	"seedream-studio/config"
)

var (
	RedisClient *redis.Client
	Ctx         = context.Background()
)

// ConnectRedis connects the cache client. Redis is optional: with no address
// configured the client stays nil and callers skip caching.
func ConnectRedis(cfg *config.Config) error {
	if cfg.RedisAddr == "" {
		RedisClient = nil
		return nil
	}

	RedisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0, // use default DB
	})

	_, err := RedisClient.Ping(Ctx).Result()
	return err
}

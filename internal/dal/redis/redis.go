package redis

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
)

// MustNewClient creates a new Redis client for the read cache.
func MustNewClient() *redis.Client {
	addr := fmt.Sprintf("%s:6379", os.Getenv("ORDER_REDIS_HOST"))

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("ORDER_REDIS_PASSWORD"),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis: %v", err))
	}

	slog.Info("Redis connected", "addr", addr)

	return client
}

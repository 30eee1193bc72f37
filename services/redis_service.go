package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "an-furnish:rl"

// RedisCounter backs the fixed-window rate limits on the public endpoints
type RedisCounter struct {
	client redis.UniversalClient
}

// NewRedisCounter connects to redisURL and verifies it answers a ping
func NewRedisCounter(ctx context.Context, redisURL string) (*RedisCounter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisCounter{client: client}, nil
}

// NewRedisCounterFromClient wraps an existing client
func NewRedisCounterFromClient(client redis.UniversalClient) *RedisCounter {
	return &RedisCounter{client: client}
}

// Key namespaces a rate limit counter
func (c *RedisCounter) Key(parts ...string) string {
	key := rateLimitKeyPrefix
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// IncrWithTTL increments the namespaced key and sets its TTL on the first increment of a window
func (c *RedisCounter) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	key = c.Key(key)
	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr: %w", err)
	}
	if ttl > 0 && count == 1 {
		if err := c.client.Expire(ctx, key, ttl).Err(); err != nil {
			return count, fmt.Errorf("redis expire: %w", err)
		}
	}
	return count, nil
}

// Ping reports whether redis is reachable
func (c *RedisCounter) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCounter) Close() error {
	return c.client.Close()
}

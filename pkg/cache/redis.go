package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/ghgmap/pkg/retry"
)

// RedisCache stores entries in Redis, so several server instances share
// rendered artifacts and zoom views.
type RedisCache struct {
	client *redis.Client
}

// ErrUnreachable is returned when the Redis server does not answer pings.
var ErrUnreachable = errors.New("redis unreachable")

// Connection check: pingAttempts pings, the delay doubling between them.
var (
	pingAttempts = 3
	pingDelay    = 500 * time.Millisecond
)

// NewRedisCache connects to the Redis server at url (redis://host:port/db)
// and checks that it answers.
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := ping(ctx, client); err != nil {
		client.Close()
		return nil, err
	}
	return &RedisCache{client: client}, nil
}

func ping(ctx context.Context, client *redis.Client) error {
	err := retry.Do(ctx, pingAttempts, pingDelay, func() error {
		return retry.Transient(client.Ping(ctx).Err())
	})
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	}
	return fmt.Errorf("%w: ping %s: %v", ErrUnreachable, client.Options().Addr, err)
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return data, true, nil
}

// Set stores a value in Redis.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes a value from Redis.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close closes the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ Cache = (*RedisCache)(nil)

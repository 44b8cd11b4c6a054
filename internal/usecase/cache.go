package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/example/farm-dashboard/internal/repository"
	"github.com/example/farm-dashboard/internal/timewindow"
)

// Cache abstracts the Redis operations used by the use case to make testing easier.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
}

// RedisCache is a concrete implementation backed by go-redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache constructs a new Redis-backed cache adapter.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Set writes a value to Redis.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.client.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a cached value from Redis. A missing key returns redis.Nil.
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, key).Result()
}

// noopCache is used when no Redis address is configured.
type noopCache struct{}

func (noopCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }

func (noopCache) Get(context.Context, string) (string, error) { return "", redis.Nil }

// dashboardCacheKey partitions cached payloads by KST calendar day and scope so
// that a day rollover never serves yesterday's "today" figures.
func dashboardCacheKey(now time.Time, scope repository.Scope) string {
	return fmt.Sprintf("dashboard:%s:%s", timewindow.DayLabel(now), scope)
}

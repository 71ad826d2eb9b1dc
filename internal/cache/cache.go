package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eyabmansour/pfe-licence-api/internal/config"
)

// Cache wraps a Redis client for short-lived read models, currently the
// per-menu-item discount applicability lists consumed by the pricing engine.
type Cache struct {
	Client *redis.Client
	TTL    time.Duration
}

// New connects to Redis and verifies the connection.
func New(cfg *config.Config, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr(),
		DB:   cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Cache{Client: client, TTL: ttl}, nil
}

// GetJSON loads the value at key into dest. The second return is false on
// a cache miss.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores v at key with the cache TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, key, data, c.TTL).Err()
}

// Incr atomically increments the counter at key and returns the new
// value. Counters are not given the cache TTL; they outlive the values
// namespaced under them.
func (c *Cache) Incr(ctx context.Context, key string) (int64, error) {
	return c.Client.Incr(ctx, key).Result()
}

// Close closes the underlying client.
func (c *Cache) Close() error {
	return c.Client.Close()
}

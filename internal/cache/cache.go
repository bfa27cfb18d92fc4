package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the subset of the redis client used by Cache.
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// HitRecorder receives cache hit and miss notifications.
type HitRecorder interface {
	RecordCacheHit(ctx context.Context)
	RecordCacheMiss(ctx context.Context)
}

// Cache stores JSON documents with a TTL. A nil *Cache, or one without a
// store, behaves as an always-empty cache.
type Cache struct {
	store    Store
	recorder HitRecorder
}

func New(store Store) *Cache {
	return &Cache{store: store}
}

// WithRecorder attaches r and returns c.
func (c *Cache) WithRecorder(r HitRecorder) *Cache {
	if c != nil {
		c.recorder = r
	}
	return c
}

// GetJSON decodes the value stored at key into dest. It reports false on a miss.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if c == nil || c.store == nil {
		return false, nil
	}

	data, err := c.store.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.miss(ctx)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.miss(ctx)
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	if c.recorder != nil {
		c.recorder.RecordCacheHit(ctx)
	}
	return true, nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c == nil || c.store == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.store.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Del(ctx, key).Err()
}

func (c *Cache) miss(ctx context.Context) {
	if c.recorder != nil {
		c.recorder.RecordCacheMiss(ctx)
	}
}

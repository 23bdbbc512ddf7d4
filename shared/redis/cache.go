package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ViewCache is a JSON-backed Redis cache for read model projections of type T.
// A zero TTL stores keys without expiry.
type ViewCache[T any] struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewViewCache creates a ViewCache backed by the provided Redis client.
func NewViewCache[T any](client *goredis.Client, ttl time.Duration) *ViewCache[T] {
	return &ViewCache[T]{client: client, ttl: ttl}
}

// Get retrieves and unmarshals a value from Redis.
// Returns (nil, false) on a miss, a Redis failure or a corrupt entry.
func (c *ViewCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			slog.WarnContext(ctx, "view cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		slog.WarnContext(ctx, "view cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return &v, true
}

// Set marshals value and stores it under every given key.
// Failures are logged, not returned: the store stays the source of truth.
func (c *ViewCache[T]) Set(ctx context.Context, value *T, keys ...string) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.WarnContext(ctx, "view cache marshal failed", "keys", keys, "error", err)
		return
	}
	pipe := c.client.Pipeline()
	for _, key := range keys {
		pipe.Set(ctx, key, data, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		slog.WarnContext(ctx, "view cache write failed", "keys", keys, "error", err)
	}
}

// Delete removes keys from Redis.
func (c *ViewCache[T]) Delete(ctx context.Context, keys ...string) {
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		slog.WarnContext(ctx, "view cache delete failed", "keys", keys, "error", err)
	}
}

// Load returns the cached value for key, or calls load on a miss and
// caches its result under key plus any extra keys.
func (c *ViewCache[T]) Load(ctx context.Context, key string, load func(context.Context) (*T, error), extraKeys ...string) (*T, error) {
	if v, ok := c.Get(ctx, key); ok {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.Set(ctx, v, append([]string{key}, extraKeys...)...)
	return v, nil
}

// LoadCurrent is Load for views that writers invalidate. The view lives under
// key suffixed with the generation stored at genKey, and Bump moves readers to
// a new generation. A loader that read the store before a write can therefore
// only fill a generation no later reader asks for.
func (c *ViewCache[T]) LoadCurrent(ctx context.Context, key, genKey string, load func(context.Context) (*T, error)) (*T, error) {
	gen, err := c.client.Get(ctx, genKey).Int64()
	if err != nil && !errors.Is(err, goredis.Nil) {
		slog.WarnContext(ctx, "view generation read failed", "key", genKey, "error", err)
		return load(ctx)
	}
	return c.Load(ctx, key+":"+strconv.FormatInt(gen, 10), load)
}

// Bump advances the generation at genKey, orphaning every view cached under
// the previous one. Orphans expire with the cache TTL.
func (c *ViewCache[T]) Bump(ctx context.Context, genKey string) error {
	if err := c.client.Incr(ctx, genKey).Err(); err != nil {
		return fmt.Errorf("failed to bump view generation: %w", err)
	}
	return nil
}

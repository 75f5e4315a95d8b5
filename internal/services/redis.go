package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"stadtwache/internal/metrics"
)

// NewRedis creates a redis client from a redis:// URL
func NewRedis(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolSize = 10
	opts.MinIdleConns = 2
	return redis.NewClient(opts), nil
}

// CacheKey names the cached public view of an entity
func CacheKey(entity, scope string) string {
	return "cache:" + entity + ":" + scope
}

// Cache is a read-through cache for public GET responses. A nil client
// disables it; every lookup then misses and writes are no-ops.
type Cache struct {
	client redis.Cmdable
	ttl    time.Duration
	log    *zap.Logger
}

// NewCache creates a Cache; client may be nil
func NewCache(client redis.Cmdable, ttl time.Duration, log *zap.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, log: log.Named("cache")}
}

// Enabled reports whether a redis client backs the cache
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Load returns the cached value for key or, on a miss, calls fetch and stores its result.
func Load[T any](ctx context.Context, c *Cache, entity, scope string, fetch func() (T, error)) (T, error) {
	key := CacheKey(entity, scope)
	if c.Enabled() {
		raw, err := c.client.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var v T
			if err := json.Unmarshal(raw, &v); err == nil {
				metrics.RecordCacheLookup(entity, true)
				return v, nil
			}
		case !errors.Is(err, redis.Nil):
			c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		metrics.RecordCacheLookup(entity, false)
	}

	v, err := fetch()
	if err != nil || !c.Enabled() {
		return v, err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return v, nil
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

// Invalidate drops the cached scopes of entity
func (c *Cache) Invalidate(ctx context.Context, entity string, scopes ...string) {
	if !c.Enabled() {
		return
	}
	if len(scopes) == 0 {
		scopes = []string{"public"}
	}
	keys := make([]string, len(scopes))
	for i, scope := range scopes {
		keys[i] = CacheKey(entity, scope)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// Denylist records revoked token ids until their natural expiry
type Denylist struct {
	client redis.Cmdable
}

// NewDenylist creates a Denylist; a nil client makes revocation a no-op
func NewDenylist(client redis.Cmdable) *Denylist {
	return &Denylist{client: client}
}

func denylistKey(jti string) string {
	return "denylist:" + jti
}

// Revoke marks jti as revoked for ttl
func (d *Denylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if d == nil || d.client == nil || jti == "" || ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, denylistKey(jti), "1", ttl).Err()
}

// IsRevoked reports whether jti was revoked
func (d *Denylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if d == nil || d.client == nil || jti == "" {
		return false, nil
	}
	n, err := d.client.Exists(ctx, denylistKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

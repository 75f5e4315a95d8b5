package client

import (
	"context"
	"sync"
)

// readCache holds public reads keyed by entity and scope. A nil cache is
// valid and caches nothing.
type readCache struct {
	mu      sync.Mutex
	entries map[string]map[string]any
}

func newReadCache() *readCache {
	return &readCache{entries: make(map[string]map[string]any)}
}

func (rc *readCache) get(entity, scope string) (any, bool) {
	if rc == nil {
		return nil, false
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	v, ok := rc.entries[entity][scope]
	return v, ok
}

func (rc *readCache) put(entity, scope string, v any) {
	if rc == nil {
		return
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.entries[entity] == nil {
		rc.entries[entity] = make(map[string]any)
	}
	rc.entries[entity][scope] = v
}

func (rc *readCache) invalidate(entity string) {
	if rc == nil {
		return
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	delete(rc.entries, entity)
}

// cached serves entity/scope from the read cache, calling load on a miss
func cached[T any](ctx context.Context, c *Client, entity, scope string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := c.cache.get(entity, scope); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	v, err := load(ctx)
	if err == nil {
		c.cache.put(entity, scope, v)
	}
	return v, err
}

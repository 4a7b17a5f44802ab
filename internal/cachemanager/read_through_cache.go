package cachemanager

import (
	"context"
	"time"
)

// Loader produces the value for a cache miss.
type Loader[V any, I any] func(ctx context.Context, input I) (V, error)

// ReadThroughCache answers from the cache and falls back to its loader on a
// miss. Only successful loads are stored, so a failed opening-hours check is
// retried on the next call.
type ReadThroughCache[K comparable, V any, I any] struct {
	store  CacheManager[K, V]
	load   Loader[V, I]
	bypass bool
}

// NewReadThroughCache wraps store with load. With bypass set every Get calls
// load directly and nothing is stored.
func NewReadThroughCache[K comparable, V any, I any](
	store CacheManager[K, V],
	load func(ctx context.Context, input I) (V, error),
	bypass bool,
) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{store: store, load: load, bypass: bypass}
}

func (c *ReadThroughCache[K, V, I]) Get(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	if !c.bypass {
		if hit, ok := c.store.Get(ctx, key); ok {
			return hit, nil
		}
	}

	fresh, err := c.load(ctx, input)
	if err == nil && !c.bypass {
		c.store.Set(ctx, key, fresh, ttl)
	}
	return fresh, err
}

// Invalidate drops key so the next Get goes to the loader.
func (c *ReadThroughCache[K, V, I]) Invalidate(ctx context.Context, key K) {
	_ = c.store.Delete(ctx, key)
}

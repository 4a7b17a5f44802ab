// Package cachemanager provides small typed caches in front of slow lookups
// such as the remote opening-hours endpoint.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager stores values of type V under keys of type K with a per-entry TTL.
type CacheManager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}

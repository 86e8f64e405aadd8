// Package cache provides a small in-process result cache with TTL-bounded
// values, tag-based early invalidation, and collapsing of concurrent identical
// misses. Staleness within the TTL is accepted; callers needing fresh data must
// invalidate.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

type Cache[V any] struct {
	lru   *expirable.LRU[string, V]
	group singleflight.Group

	mu   sync.Mutex
	tags map[string]map[string]struct{}
}

// New creates a cache holding up to size entries for at most ttl each.
func New[V any](size int, ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		lru:  expirable.NewLRU[string, V](size, nil, ttl),
		tags: map[string]map[string]struct{}{},
	}
}

// GetOrCompute returns the cached value for key, computing and storing it on
// a miss. Concurrent callers with the same key share one computation. A failed
// computation is not cached. The tags associate the key with invalidation
// groups.
func (c *Cache[V]) GetOrCompute(ctx context.Context, key string, tags []string, compute func(ctx context.Context) (V, error)) (V, bool, error) {
	if value, ok := c.lru.Get(key); ok {
		return value, true, nil
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		// Another caller may have populated the entry while we queued.
		if value, ok := c.lru.Get(key); ok {
			return value, nil
		}

		value, err := compute(ctx)
		if err != nil {
			return value, err
		}

		c.lru.Add(key, value)
		c.track(key, tags)
		return value, nil
	})

	if err != nil {
		var zero V
		return zero, false, err
	}
	return result.(V), false, nil
}

// Invalidate drops every key registered under the tag.
func (c *Cache[V]) Invalidate(tag string) {
	c.mu.Lock()
	keys := c.tags[tag]
	delete(c.tags, tag)
	c.mu.Unlock()

	for key := range keys {
		c.lru.Remove(key)
	}
}

// Purge drops everything.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	c.tags = map[string]map[string]struct{}{}
	c.mu.Unlock()
	c.lru.Purge()
}

func (c *Cache[V]) track(key string, tags []string) {
	if len(tags) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tag := range tags {
		keys := c.tags[tag]
		if keys == nil {
			keys = map[string]struct{}{}
			c.tags[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

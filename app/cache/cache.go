// Package cache provides a bounded, TTL-based memoization table. Entries are
// evicted in insertion order once the table is full.
package cache

import (
	"context"
	"slices"
	"sync"
	"time"
)

const (
	DefaultTTL        = 30 * time.Minute
	DefaultMaxEntries = 200
)

// Hooks receive cache events, typically for metrics.
type Hooks struct {
	OnHit   func(key string)
	OnMiss  func(key string)
	OnEvict func(key string)
}

type entry[V any] struct {
	value      V
	insertedAt time.Time
}

type Cache[V any] struct {
	ttl        time.Duration
	maxEntries int
	hooks      Hooks

	mu      sync.Mutex
	entries map[string]entry[V]
	order   []string
	hits    int64
	misses  int64
	now     func() time.Time
}

type Stats struct {
	Size       int   `json:"size"`
	MaxEntries int   `json:"max_entries"`
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
}

func New[V any](ttl time.Duration, maxEntries int, hooks Hooks) *Cache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	return &Cache[V]{
		ttl:        ttl,
		maxEntries: maxEntries,
		hooks:      hooks,
		entries:    make(map[string]entry[V]),
		now:        time.Now,
	}
}

// Get returns the value for key while it is younger than the TTL. Stale
// entries are removed on access.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	v, ok := c.get(key)
	c.mu.Unlock()

	if ok {
		if c.hooks.OnHit != nil {
			c.hooks.OnHit(key)
		}
	} else if c.hooks.OnMiss != nil {
		c.hooks.OnMiss(key)
	}
	return v, ok
}

func (c *Cache[V]) get(key string) (V, bool) {
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}

	if c.now().Sub(e.insertedAt) >= c.ttl {
		c.remove(key)
		c.misses++
		var zero V
		return zero, false
	}

	c.hits++
	return e.value, true
}

// Set stores value under key. Storing a new key into a full table first
// evicts the oldest inserted entry. Updating an existing key refreshes its
// timestamp but keeps its position in the eviction order.
func (c *Cache[V]) Set(key string, value V) {
	var evicted []string

	c.mu.Lock()
	if _, exists := c.entries[key]; !exists {
		for len(c.order) >= c.maxEntries {
			oldest := c.order[0]
			c.remove(oldest)
			evicted = append(evicted, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = entry[V]{value: value, insertedAt: c.now()}
	c.mu.Unlock()

	if c.hooks.OnEvict != nil {
		for _, k := range evicted {
			c.hooks.OnEvict(k)
		}
	}
}

// GetOrFetch returns the cached value for key or runs producer and stores
// its result. Producer errors are returned and nothing is stored. Concurrent
// misses on the same key may each run producer.
func (c *Cache[V]) GetOrFetch(ctx context.Context, key string, producer func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := producer(ctx)
	if err != nil {
		var zero V
		return zero, err
	}

	c.Set(key, v)
	return v, nil
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.remove(key)
}

func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry[V])
	c.order = nil
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Size:       len(c.entries),
		MaxEntries: c.maxEntries,
		Hits:       c.hits,
		Misses:     c.misses,
	}
}

func (c *Cache[V]) remove(key string) {
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	if i := slices.Index(c.order, key); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
}

// Package expiry provides a TTL map with an eviction callback. Entries expire
// after a period without writes; expiry is driven by an explicit Sweep so the
// owner controls when eviction side effects run.
package expiry

import "time"

// Cache is not safe for concurrent use; the owner provides synchronization.
type Cache[K comparable, V any] struct {
	ttl     time.Duration
	onEvict func(K, V)
	entries map[K]*entry[V]
}

type entry[V any] struct {
	value   V
	touched time.Time
}

// New builds a cache whose entries expire ttl after the last Put or Touch.
// onEvict (may be nil) runs for entries removed by Sweep, not by Invalidate.
func New[K comparable, V any](ttl time.Duration, onEvict func(K, V)) *Cache[K, V] {
	return &Cache[K, V]{
		ttl:     ttl,
		onEvict: onEvict,
		entries: make(map[K]*entry[V]),
	}
}

func (c *Cache[K, V]) Get(k K) (V, bool) {
	e, ok := c.entries[k]
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *Cache[K, V]) Put(k K, v V) {
	c.entries[k] = &entry[V]{value: v, touched: time.Now()}
}

// Touch extends the lifetime of an existing entry without replacing it.
func (c *Cache[K, V]) Touch(k K) {
	if e, ok := c.entries[k]; ok {
		e.touched = time.Now()
	}
}

// Invalidate removes an entry without running the eviction callback.
func (c *Cache[K, V]) Invalidate(k K) {
	delete(c.entries, k)
}

// Sweep evicts every entry whose TTL elapsed before now, invoking the
// eviction callback for each.
func (c *Cache[K, V]) Sweep(now time.Time) {
	for k, e := range c.entries {
		if now.Sub(e.touched) > c.ttl {
			delete(c.entries, k)
			if c.onEvict != nil {
				c.onEvict(k, e.value)
			}
		}
	}
}

func (c *Cache[K, V]) Len() int {
	return len(c.entries)
}

// Each calls fn for every live entry.
func (c *Cache[K, V]) Each(fn func(K, V)) {
	for k, e := range c.entries {
		fn(k, e.value)
	}
}

// Package cache provides the bounded LRU caches used for prepared
// statements and described table schemas.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// LRU is a concurrency-safe least recently used cache. The optional evict
// callback runs, with the lock held, for every entry leaving the cache.
type LRU[V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List
	evict    func(key string, value V)

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type entry[V any] struct {
	key   string
	value V
}

// NewLRU creates a cache holding at most capacity entries. A non-positive
// capacity is replaced by 1.
func NewLRU[V any](capacity int, evict func(key string, value V)) *LRU[V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRU[V]{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
		evict:    evict,
	}
}

// Get returns the value for key and marks it as recently used.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.order.MoveToFront(el)
	c.hits.Add(1)
	return el.Value.(*entry[V]).value, true
}

// Set stores value under key. A replaced value goes through the evict
// callback, as does the least recently used entry when the cache is full.
func (c *LRU[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[V])
		if c.evict != nil {
			c.evict(key, e.value)
		}
		e.value = value
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.capacity {
		c.removeElement(c.order.Back())
		c.evictions.Add(1)
	}
	c.items[key] = c.order.PushFront(&entry[V]{key: key, value: value})
}

// GetOrSet returns the existing value for key, or stores value when key is
// absent. loaded reports whether the value was already present.
func (c *LRU[V]) GetOrSet(key string, value V) (actual V, loaded bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		c.hits.Add(1)
		return el.Value.(*entry[V]).value, true
	}

	c.misses.Add(1)
	if c.order.Len() >= c.capacity {
		c.removeElement(c.order.Back())
		c.evictions.Add(1)
	}
	c.items[key] = c.order.PushFront(&entry[V]{key: key, value: value})
	return value, false
}

// Remove drops key, reporting whether it was present.
func (c *LRU[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeElement(el)
	return true
}

// Len returns the number of entries.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear drops every entry.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for el := c.order.Front(); el != nil; el = el.Next() {
		if c.evict != nil {
			e := el.Value.(*entry[V])
			c.evict(e.key, e.value)
		}
	}
	c.items = make(map[string]*list.Element, c.capacity)
	c.order.Init()
}

// must be called with the lock held
func (c *LRU[V]) removeElement(el *list.Element) {
	if el == nil {
		return
	}
	c.order.Remove(el)
	e := el.Value.(*entry[V])
	delete(c.items, e.key)
	if c.evict != nil {
		c.evict(e.key, e.value)
	}
}

// Stats holds cache counters.
type Stats struct {
	Size      int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	HitRate   float64
}

// Stats returns a snapshot of the cache counters.
func (c *LRU[V]) Stats() Stats {
	size := c.Len()
	hits, misses := c.hits.Load(), c.misses.Load()

	rate := 0.0
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	return Stats{
		Size:      size,
		Capacity:  c.capacity,
		Hits:      hits,
		Misses:    misses,
		Evictions: c.evictions.Load(),
		HitRate:   rate,
	}
}

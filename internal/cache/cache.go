// Package cache provides a generic in-memory key/value cache with
// per-entry TTL and LRU eviction under a global capacity.
//
// Expiration is lazy: an entry past its deadline is treated as absent on
// any access and removed at that point. Capacity and TTL are independent:
// a live entry can be evicted under capacity pressure, and an expired
// entry is never returned regardless of its LRU position.
package cache

import (
	"container/list"
	"fmt"
	"sync"
	"time"

	"github.com/acta-dev/acta-mcp/internal/core/domain"
)

// entry is a single cache slot. Owned exclusively by the cache.
type entry[V any] struct {
	key          string
	value        V
	expiresAt    time.Time
	lastAccessed time.Time
}

// Cache is a TTL+LRU cache with string keys. Safe for concurrent use.
type Cache[V any] struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element

	// lru holds *entry[V] elements, most recently accessed at the front.
	// Entries that were never read keep their insertion order, so the
	// back of the list is always the LRU victim.
	lru *list.List

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// New creates a cache holding at most capacity entries.
func New[V any](capacity int) (*Cache[V], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: cache capacity must be >= 1, got %d", domain.ErrInvalidConfig, capacity)
	}
	return &Cache[V]{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
		now:      time.Now,
	}, nil
}

// Get returns the value for key. The second return is false if the key was
// never set, has expired, or was evicted. A hit updates the entry's
// recency for LRU ordering.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	e := elem.Value.(*entry[V])
	if !c.now().Before(e.expiresAt) {
		c.removeLocked(elem)
		return zero, false
	}
	e.lastAccessed = c.now()
	c.lru.MoveToFront(elem)
	return e.value, true
}

// Set stores value under key with the given TTL, overwriting any existing
// entry and resetting its TTL. A zero (or negative) TTL stores the entry
// already expired; it will never be observably retrievable. If inserting
// would exceed capacity, least-recently-accessed entries are evicted first.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if ttl < 0 {
		ttl = 0
	}

	if elem, ok := c.entries[key]; ok {
		e := elem.Value.(*entry[V])
		e.value = value
		e.expiresAt = now.Add(ttl)
		e.lastAccessed = now
		c.lru.MoveToFront(elem)
		return
	}

	c.purgeExpiredLocked(now)
	for len(c.entries) >= c.capacity {
		c.evictLRULocked()
	}

	e := &entry[V]{key: key, value: value, expiresAt: now.Add(ttl), lastAccessed: now}
	c.entries[key] = c.lru.PushFront(e)
}

// Delete removes the entry for key, if present.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[key]; ok {
		c.removeLocked(elem)
	}
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.lru.Init()
}

// Size returns the number of live (non-expired) entries.
func (c *Cache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purgeExpiredLocked(c.now())
	return len(c.entries)
}

func (c *Cache[V]) removeLocked(elem *list.Element) {
	e := elem.Value.(*entry[V])
	delete(c.entries, e.key)
	c.lru.Remove(elem)
}

func (c *Cache[V]) purgeExpiredLocked(now time.Time) {
	var next *list.Element
	for elem := c.lru.Front(); elem != nil; elem = next {
		next = elem.Next()
		if !now.Before(elem.Value.(*entry[V]).expiresAt) {
			c.removeLocked(elem)
		}
	}
}

func (c *Cache[V]) evictLRULocked() {
	if back := c.lru.Back(); back != nil {
		c.removeLocked(back)
	}
}

// Package memcache is a bounded in-memory cache for component scores.
// Entries are evicted least-recently-used at the size bound and expire after
// a time-to-live, whichever bound is hit first. Concurrent computations for
// the same key collapse into a single flight.
package memcache

import (
	"container/list"
	"sync"
	"time"

	"github.com/grantops/grantscope/schema"
	"golang.org/x/sync/singleflight"
)

// DefaultMaxEntries bounds the cache when no size is configured.
const DefaultMaxEntries = 1024

// DefaultTTL expires entries when no TTL is configured.
const DefaultTTL = 15 * time.Minute

// Stats holds cache effectiveness counters.
type Stats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Evictions   int64 `json:"evictions"`
	Expirations int64 `json:"expirations"`
}

type entry struct {
	key       string
	value     schema.ComponentScore
	expiresAt time.Time
}

// Cache is a bounded LRU with TTL expiry. All methods are safe for
// concurrent use.
type Cache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	ll         *list.List // front is most recently used
	items      map[string]*list.Element
	group      singleflight.Group
	stats      Stats
	now        func() time.Time
}

// New returns a cache bounded to maxEntries with the given TTL.
// Non-positive arguments fall back to the defaults.
func New(maxEntries int, ttl time.Duration) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:        ttl,
		maxEntries: maxEntries,
		ll:         list.New(),
		items:      make(map[string]*list.Element),
		now:        time.Now,
	}
}

// Get returns the cached value for key, expiring it lazily if the TTL has
// elapsed.
func (c *Cache) Get(key string) (schema.ComponentScore, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(key)
}

func (c *Cache) getLocked(key string) (schema.ComponentScore, bool) {
	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return schema.ComponentScore{}, false
	}

	ent := elem.Value.(*entry)
	if c.now().After(ent.expiresAt) {
		c.removeLocked(elem)
		c.stats.Expirations++
		c.stats.Misses++
		return schema.ComponentScore{}, false
	}

	c.ll.MoveToFront(elem)
	c.stats.Hits++
	return ent.value, true
}

// Put stores value under key, evicting the least recently used entry if the
// size bound is reached.
func (c *Cache) Put(key string, value schema.ComponentScore) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.putLocked(key, value)
}

func (c *Cache) putLocked(key string, value schema.ComponentScore) {
	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*entry)
		ent.value = value
		ent.expiresAt = c.now().Add(c.ttl)
		c.ll.MoveToFront(elem)
		return
	}

	if c.ll.Len() >= c.maxEntries {
		if oldest := c.ll.Back(); oldest != nil {
			c.removeLocked(oldest)
			c.stats.Evictions++
		}
	}

	elem := c.ll.PushFront(&entry{
		key:       key,
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	})
	c.items[key] = elem
}

// GetOrCompute returns the cached value for key, or runs compute exactly once
// across all concurrent callers for the same key and caches the result.
// The compute function is not cancellable: once a flight is claimed it runs
// to completion so the work is never wasted.
func (c *Cache) GetOrCompute(key string, compute func() (schema.ComponentScore, error)) (schema.ComponentScore, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent flight may have populated the entry between the miss
		// above and claiming the flight.
		if value, ok := c.peek(key); ok {
			return value, nil
		}

		value, err := compute()
		if err != nil {
			return schema.ComponentScore{}, err
		}

		c.Put(key, value)
		return value, nil
	})
	if err != nil {
		return schema.ComponentScore{}, err
	}
	return v.(schema.ComponentScore), nil
}

// peek reads an unexpired entry without touching recency or counters.
func (c *Cache) peek(key string) (schema.ComponentScore, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.items[key]
	if !ok {
		return schema.ComponentScore{}, false
	}
	ent := elem.Value.(*entry)
	if c.now().After(ent.expiresAt) {
		return schema.ComponentScore{}, false
	}
	return ent.value, true
}

// Invalidate removes key from the cache if present.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.removeLocked(elem)
	}
}

// Clear drops every entry and resets the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element)
	c.stats = Stats{}
}

// Len returns the current number of entries, including any not yet expired
// lazily.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Stats returns a snapshot of the effectiveness counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Cache) removeLocked(elem *list.Element) {
	ent := elem.Value.(*entry)
	c.ll.Remove(elem)
	delete(c.items, ent.key)
}

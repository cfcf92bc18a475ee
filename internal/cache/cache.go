// Package cache provides a generic revision-keyed cache with TTL expiry and
// LRU eviction. Entries remember the composite store revision observed when
// they were written; a revision mismatch always invalidates the entry, even
// inside the TTL window, so readers never see pre-mutation values.
package cache

import (
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type entry[V any] struct {
	value       V
	revisionKey string
	expiresAt   time.Time
}

// Stats is a point-in-time snapshot of cache effectiveness counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Stale     uint64
	Expired   uint64
	Evictions uint64
	Entries   int
}

// Cache is a bounded TTL cache whose entries are additionally keyed by the
// revision observed at write time.
type Cache[V any] struct {
	lru   *lru.Cache[string, entry[V]]
	ttl   time.Duration
	nowFn func() time.Time

	hits      atomic.Uint64
	misses    atomic.Uint64
	stale     atomic.Uint64
	expired   atomic.Uint64
	evictions atomic.Uint64
}

// New constructs a cache holding at most maxEntries values for at most ttl.
// Least recently used entries are evicted once the bound is reached.
func New[V any](maxEntries int, ttl time.Duration) (*Cache[V], error) {
	inner, err := lru.New[string, entry[V]](maxEntries)
	if err != nil {
		return nil, err
	}
	return &Cache[V]{
		lru:   inner,
		ttl:   ttl,
		nowFn: func() time.Time { return time.Now().UTC() },
	}, nil
}

// Get returns the cached value for key when it is fresh: not expired and
// written under the same revision key the caller currently observes. Stale or
// expired entries are removed and reported as misses.
func (c *Cache[V]) Get(key, revisionKey string) (V, bool) {
	var zero V
	ent, ok := c.lru.Get(key)
	if !ok {
		c.misses.Add(1)
		return zero, false
	}
	if ent.revisionKey != revisionKey {
		c.lru.Remove(key)
		c.stale.Add(1)
		c.misses.Add(1)
		return zero, false
	}
	if !c.nowFn().Before(ent.expiresAt) {
		c.lru.Remove(key)
		c.expired.Add(1)
		c.misses.Add(1)
		return zero, false
	}
	c.hits.Add(1)
	return ent.value, true
}

// Put stores value under key, tagged with the revision the caller observed.
// The least recently used entry is dropped when the cache is full.
func (c *Cache[V]) Put(key, revisionKey string, value V) {
	evicted := c.lru.Add(key, entry[V]{
		value:       value,
		revisionKey: revisionKey,
		expiresAt:   c.nowFn().Add(c.ttl),
	})
	if evicted {
		c.evictions.Add(1)
	}
}

// Purge drops all entries.
func (c *Cache[V]) Purge() {
	c.lru.Purge()
}

// Len returns the current entry count.
func (c *Cache[V]) Len() int {
	return c.lru.Len()
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Stale:     c.stale.Load(),
		Expired:   c.expired.Load(),
		Evictions: c.evictions.Load(),
		Entries:   c.lru.Len(),
	}
}

// SetNowFunc overrides the cache clock. Intended for tests.
func (c *Cache[V]) SetNowFunc(now func() time.Time) {
	if now != nil {
		c.nowFn = now
	}
}

package core

import (
	"time"

	"archgraph/internal/cache"
	"archgraph/pkg/domain"
)

// Cache policy. Fixed, explicit constants rather than per-call knobs: the
// query tier is wide and short-lived, the resolution tier is narrow and
// shorter-lived because resolutions are far more expensive to hold wrong.
const (
	queryCacheTTL        = 30 * time.Second
	queryCacheMaxEntries = 1024

	resolutionCacheTTL        = 10 * time.Second
	resolutionCacheMaxEntries = 128
)

// QueryCache fronts the four hot point-queries of the graph store: element by
// id, elements by type, outgoing edges, incoming edges. Every entry is tagged
// with the composite revision key observed at fill time; a revision mismatch
// always wins over TTL, so a reader can never see a pre-mutation value.
type QueryCache struct {
	store    *GraphStore
	revKeyFn func() string

	elementByID    *cache.Cache[elementHit]
	elementsByType *cache.Cache[[]domain.Element]
	edges          *cache.Cache[[]domain.Relationship]
}

// elementHit preserves the found/not-found distinction so negative lookups
// are cacheable too.
type elementHit struct {
	element domain.Element
	ok      bool
}

// NewQueryCache builds the query tier over the store. revKeyFn must return
// the current composite revision key.
func NewQueryCache(store *GraphStore, revKeyFn func() string) *QueryCache {
	byID, err := cache.New[elementHit](queryCacheMaxEntries, queryCacheTTL)
	if err != nil {
		panic(err)
	}
	byType, err := cache.New[[]domain.Element](queryCacheMaxEntries, queryCacheTTL)
	if err != nil {
		panic(err)
	}
	edges, err := cache.New[[]domain.Relationship](queryCacheMaxEntries, queryCacheTTL)
	if err != nil {
		panic(err)
	}
	return &QueryCache{
		store:          store,
		revKeyFn:       revKeyFn,
		elementByID:    byID,
		elementsByType: byType,
		edges:          edges,
	}
}

// ElementByID returns the element through the cache.
func (c *QueryCache) ElementByID(id string) (domain.Element, bool) {
	rev := c.revKeyFn()
	key := "element:" + id
	if hit, ok := c.elementByID.Get(key, rev); ok {
		return hit.element, hit.ok
	}
	element, ok := c.store.GetElementByID(id)
	c.elementByID.Put(key, rev, elementHit{element: element, ok: ok})
	return element, ok
}

// ElementsByType returns one typed collection through the cache.
func (c *QueryCache) ElementsByType(t domain.ElementType) []domain.Element {
	rev := c.revKeyFn()
	key := "elements_by_type:" + string(t)
	if hit, ok := c.elementsByType.Get(key, rev); ok {
		return hit
	}
	elements := c.store.GetElementsByType(t)
	c.elementsByType.Put(key, rev, elements)
	return elements
}

// Outgoing returns the element's outgoing edges through the cache.
func (c *QueryCache) Outgoing(elementID string) []domain.Relationship {
	rev := c.revKeyFn()
	key := "outgoing:" + elementID
	if hit, ok := c.edges.Get(key, rev); ok {
		return hit
	}
	edges := c.store.OutgoingRelationships(elementID)
	c.edges.Put(key, rev, edges)
	return edges
}

// Incoming returns the element's incoming edges through the cache.
func (c *QueryCache) Incoming(elementID string) []domain.Relationship {
	rev := c.revKeyFn()
	key := "incoming:" + elementID
	if hit, ok := c.edges.Get(key, rev); ok {
		return hit
	}
	edges := c.store.IncomingRelationships(elementID)
	c.edges.Put(key, rev, edges)
	return edges
}

// Stats aggregates the counters of the three underlying caches.
func (c *QueryCache) Stats() cache.Stats {
	a, b, d := c.elementByID.Stats(), c.elementsByType.Stats(), c.edges.Stats()
	return cache.Stats{
		Hits:      a.Hits + b.Hits + d.Hits,
		Misses:    a.Misses + b.Misses + d.Misses,
		Stale:     a.Stale + b.Stale + d.Stale,
		Expired:   a.Expired + b.Expired + d.Expired,
		Evictions: a.Evictions + b.Evictions + d.Evictions,
		Entries:   a.Entries + b.Entries + d.Entries,
	}
}

// Purge drops every cached entry in the query tier.
func (c *QueryCache) Purge() {
	c.elementByID.Purge()
	c.elementsByType.Purge()
	c.edges.Purge()
}

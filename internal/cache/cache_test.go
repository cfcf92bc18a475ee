package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestCacheHitSameRevision(t *testing.T) {
	c, err := New[int](8, time.Minute)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	c.Put("k", "rev1", 42)
	got, ok := c.Get("k", "rev1")
	if !ok || got != 42 {
		t.Fatalf("expected hit with 42, got %d ok=%v", got, ok)
	}
	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestCacheRevisionMismatchBeatsTTL(t *testing.T) {
	c, err := New[string](8, time.Hour)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	c.Put("k", "rev1", "value")
	// TTL is nowhere near elapsed; the entry must still die on revision skew.
	if _, ok := c.Get("k", "rev2"); ok {
		t.Fatalf("expected miss for mismatched revision")
	}
	if _, ok := c.Get("k", "rev1"); ok {
		t.Fatalf("stale entry must have been discarded, not resurrected")
	}
	stats := c.Stats()
	if stats.Stale != 1 {
		t.Fatalf("expected one stale invalidation, got %+v", stats)
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	c, err := New[string](8, time.Minute)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	now := time.Unix(1000, 0)
	c.SetNowFunc(func() time.Time { return now })

	c.Put("k", "rev1", "value")
	if _, ok := c.Get("k", "rev1"); !ok {
		t.Fatalf("expected hit before expiry")
	}
	now = now.Add(time.Minute)
	if _, ok := c.Get("k", "rev1"); ok {
		t.Fatalf("expected miss at TTL boundary")
	}
	if c.Stats().Expired != 1 {
		t.Fatalf("expected one expiry, got %+v", c.Stats())
	}
}

func TestCacheLRUEviction(t *testing.T) {
	c, err := New[int](2, time.Minute)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	c.Put("a", "rev", 1)
	c.Put("b", "rev", 2)
	// Touch "a" so "b" becomes the least recently used entry.
	if _, ok := c.Get("a", "rev"); !ok {
		t.Fatalf("expected hit for a")
	}
	c.Put("c", "rev", 3)

	if _, ok := c.Get("b", "rev"); ok {
		t.Fatalf("expected b evicted as least recently used")
	}
	if _, ok := c.Get("a", "rev"); !ok {
		t.Fatalf("expected a retained")
	}
	if _, ok := c.Get("c", "rev"); !ok {
		t.Fatalf("expected c retained")
	}
	if c.Stats().Evictions != 1 {
		t.Fatalf("expected one eviction, got %+v", c.Stats())
	}
}

func TestCachePurgeAndLen(t *testing.T) {
	c, err := New[int](8, time.Minute)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for i := 0; i < 4; i++ {
		c.Put(fmt.Sprintf("k%d", i), "rev", i)
	}
	if c.Len() != 4 {
		t.Fatalf("expected 4 entries, got %d", c.Len())
	}
	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after purge, got %d", c.Len())
	}
}

package core

import (
	"context"
	"fmt"
	"testing"

	"archgraph/pkg/domain"
)

func newTestQueryCache(t *testing.T) (*GraphStore, *QueryCache) {
	t.Helper()
	store := newTestStore(t)
	queries := NewQueryCache(store, func() string {
		return fmt.Sprintf("e%d.r%d", store.ElementRevision(), store.RelationshipRevision())
	})
	return store, queries
}

func TestQueryCacheHitSecondRead(t *testing.T) {
	store, queries := newTestQueryCache(t)
	mustAddElement(t, store, capability("cap-1", "Billing"))

	if _, ok := queries.ElementByID("cap-1"); !ok {
		t.Fatalf("expected element")
	}
	if _, ok := queries.ElementByID("cap-1"); !ok {
		t.Fatalf("expected element")
	}
	stats := queries.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Fatalf("expected 1 hit, 1 miss, got %+v", stats)
	}
}

func TestQueryCacheNegativeLookupCached(t *testing.T) {
	_, queries := newTestQueryCache(t)

	if _, ok := queries.ElementByID("nope"); ok {
		t.Fatalf("expected miss on absent element")
	}
	if _, ok := queries.ElementByID("nope"); ok {
		t.Fatalf("expected miss on absent element")
	}
	stats := queries.Stats()
	if stats.Hits != 1 {
		t.Fatalf("negative lookup must be cacheable, got %+v", stats)
	}
}

func TestQueryCacheInvalidatedByMutation(t *testing.T) {
	store, queries := newTestQueryCache(t)
	mustAddElement(t, store, capability("cap-1", "Billing"))

	got := queries.ElementsByType(domain.ElementCapability)
	if len(got) != 1 {
		t.Fatalf("expected 1 capability, got %d", len(got))
	}

	mustAddElement(t, store, capability("cap-2", "Accounting"))

	got = queries.ElementsByType(domain.ElementCapability)
	if len(got) != 2 {
		t.Fatalf("stale read after mutation: got %d capabilities", len(got))
	}
	stats := queries.Stats()
	if stats.Stale != 1 {
		t.Fatalf("expected the pre-mutation entry counted stale, got %+v", stats)
	}
}

func TestQueryCacheEdgeReadsTrackRelationshipRevision(t *testing.T) {
	store, queries := newTestQueryCache(t)
	mustAddElement(t, store, capability("cap-1", "Billing"))
	mustAddElement(t, store, application("app-1", "Ledger"))
	mustAddElement(t, store, application("app-2", "Invoicer"))
	mustAddRelationship(t, store, supportedBy("rel-1", "cap-1", "app-1"))

	if out := queries.Outgoing("cap-1"); len(out) != 1 {
		t.Fatalf("expected 1 outgoing edge, got %d", len(out))
	}

	mustAddRelationship(t, store, supportedBy("rel-2", "cap-1", "app-2"))

	if out := queries.Outgoing("cap-1"); len(out) != 2 {
		t.Fatalf("stale edge read after mutation: got %d", len(out))
	}
	if in := queries.Incoming("app-1"); len(in) != 1 {
		t.Fatalf("expected 1 incoming edge, got %d", len(in))
	}
}

func TestQueryCachePurge(t *testing.T) {
	store, queries := newTestQueryCache(t)
	mustAddElement(t, store, capability("cap-1", "Billing"))

	queries.ElementByID("cap-1")
	queries.ElementsByType(domain.ElementCapability)
	if queries.Stats().Entries == 0 {
		t.Fatalf("expected populated cache")
	}
	queries.Purge()
	if queries.Stats().Entries != 0 {
		t.Fatalf("purge must drop every entry")
	}
	if _, ok := queries.ElementByID("cap-1"); !ok {
		t.Fatalf("store read must still work after purge")
	}
}

func TestQueryCacheFailedMutationDoesNotInvalidate(t *testing.T) {
	store, queries := newTestQueryCache(t)
	mustAddElement(t, store, capability("cap-1", "Billing"))

	queries.ElementByID("cap-1")
	if _, _, err := store.AddElement(context.Background(), domain.ElementCapability, capability("cap-1", "Billing")); err == nil {
		t.Fatalf("expected duplicate id rejection")
	}
	queries.ElementByID("cap-1")

	stats := queries.Stats()
	if stats.Hits != 1 || stats.Stale != 0 {
		t.Fatalf("rejected commits must not move the revision key, got %+v", stats)
	}
}

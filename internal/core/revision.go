package core

import "fmt"

// RevisionKey is a snapshot of the three store revision counters, taken in a
// single observation. It is the cache-coherence token for both cache tiers:
// an entry written under one key is unusable once any counter has moved.
//
// The triple is a snapshot, not a global clock. Two keys taken around a
// concurrent write may differ while each remains internally consistent.
type RevisionKey struct {
	Elements      uint64
	Relationships uint64
	Views         uint64
}

// String returns the ordered concatenation used as cache entry tag.
func (k RevisionKey) String() string {
	return fmt.Sprintf("e%d.r%d.v%d", k.Elements, k.Relationships, k.Views)
}

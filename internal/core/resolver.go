package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"archgraph/internal/cache"
	"archgraph/pkg/domain"
)

// ResolutionStats summarises one resolution for diagnostics and diagram
// legends.
type ResolutionStats struct {
	EligibleElements      int `json:"eligible_elements"`
	EligibleRelationships int `json:"eligible_relationships"`
	SelectedElements      int `json:"selected_elements"`
	SelectedRelationships int `json:"selected_relationships"`
	MaxDepthReached       int `json:"max_depth_reached"`
}

// Resolution is the concrete node/edge set a view definition projects over
// the current graph. Orderings are deterministic: resolving twice with no
// intervening mutation yields identical slices.
type Resolution struct {
	ElementIDs    []string              `json:"element_ids"`
	Elements      []domain.Element      `json:"elements"`
	Relationships []domain.Relationship `json:"relationships"`
	Stats         ResolutionStats       `json:"stats"`
}

// Resolver projects view definitions over the graph. It owns no persistent
// state: its cache is a disposable projection rebuildable from the stores.
// Resolution is a read path backing visualizations, so it never fails: an
// unresolvable root yields an empty selection.
type Resolver struct {
	store    *GraphStore
	queries  *QueryCache
	revKeyFn func() string
	results  *cache.Cache[Resolution]
	logger   Logger
}

// NewResolver builds a resolver over the store and its query cache tier.
func NewResolver(store *GraphStore, queries *QueryCache, revKeyFn func() string, logger Logger) *Resolver {
	results, err := cache.New[Resolution](resolutionCacheMaxEntries, resolutionCacheTTL)
	if err != nil {
		panic(err)
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Resolver{
		store:    store,
		queries:  queries,
		revKeyFn: revKeyFn,
		results:  results,
		logger:   logger,
	}
}

// CacheStats exposes the resolution cache counters.
func (r *Resolver) CacheStats() cache.Stats { return r.results.Stats() }

// PurgeCache drops every cached resolution.
func (r *Resolver) PurgeCache() { r.results.Purge() }

// Resolve computes the node/edge set for the view. Results are cached by the
// fingerprint of the definition's resolution-relevant fields together with
// the composite revision key observed at entry.
func (r *Resolver) Resolve(ctx context.Context, view domain.ViewDefinition) Resolution {
	rev := r.revKeyFn()
	key := fingerprint(view)
	if cached, ok := r.results.Get(key, rev); ok {
		return cached
	}

	resolution := r.resolve(ctx, view)
	r.results.Put(key, rev, resolution)
	return resolution
}

func (r *Resolver) resolve(_ context.Context, view domain.ViewDefinition) Resolution {
	allowedElements := make(map[domain.ElementType]struct{}, len(view.AllowedElementTypes))
	for _, t := range view.AllowedElementTypes {
		allowedElements[t] = struct{}{}
	}
	allowedRelationships := make(map[domain.RelationshipType]struct{}, len(view.AllowedRelationshipTypes))
	for _, t := range view.AllowedRelationshipTypes {
		allowedRelationships[t] = struct{}{}
	}

	// Eligibility filter. Elements come through the cached per-type queries;
	// types are iterated in their canonical order so the scan is stable.
	eligible := make(map[string]domain.Element)
	for _, t := range domain.ElementTypes() {
		if _, ok := allowedElements[t]; !ok {
			continue
		}
		for _, e := range r.queries.ElementsByType(t) {
			eligible[e.ID] = e
		}
	}

	table := r.store.gate.Semantics()
	var eligibleRels []domain.Relationship
	for _, rel := range r.store.GetAllRelationships() {
		if _, ok := allowedRelationships[rel.Type]; !ok {
			continue
		}
		if !table.Knows(rel.Type) {
			continue
		}
		if _, ok := allowedElements[rel.SourceType]; !ok {
			continue
		}
		if _, ok := allowedElements[rel.TargetType]; !ok {
			continue
		}
		if _, ok := eligible[rel.SourceID]; !ok {
			continue
		}
		if _, ok := eligible[rel.TargetID]; !ok {
			continue
		}
		eligibleRels = append(eligibleRels, rel)
	}
	sortRelationships(eligibleRels)

	stats := ResolutionStats{
		EligibleElements:      len(eligible),
		EligibleRelationships: len(eligibleRels),
	}

	if view.RootElementID == "" {
		return globalProjection(eligible, eligibleRels, stats)
	}

	root, ok := eligible[view.RootElementID]
	if !ok {
		// A stale or type-excluded root is a policy-level empty selection,
		// never a hard failure: the caller is usually rendering a diagram.
		r.logger.Debug("view root not eligible", "view", view.ID, "root", view.RootElementID)
		return Resolution{ElementIDs: []string{}, Elements: []domain.Element{}, Relationships: []domain.Relationship{}, Stats: stats}
	}

	return rootedProjection(root, view.MaxDepth, eligible, eligibleRels, stats)
}

// globalProjection selects the full eligible set, ordered by
// (type, name, id) for elements.
func globalProjection(eligible map[string]domain.Element, rels []domain.Relationship, stats ResolutionStats) Resolution {
	elements := make([]domain.Element, 0, len(eligible))
	for _, e := range eligible {
		elements = append(elements, e)
	}
	sortElements(elements)

	ids := make([]string, len(elements))
	for i, e := range elements {
		ids[i] = e.ID
	}
	stats.SelectedElements = len(elements)
	stats.SelectedRelationships = len(rels)
	return Resolution{ElementIDs: ids, Elements: elements, Relationships: rels, Stats: stats}
}

// rootedProjection walks eligible outgoing edges breadth-first from the root.
// Each element is visited once at its first-discovery distance; neighbor
// expansion order is (relationship type, target id, relationship id) so ties
// resolve reproducibly. maxDepth <= 0 means unbounded.
func rootedProjection(root domain.Element, maxDepth int, eligible map[string]domain.Element, rels []domain.Relationship, stats ResolutionStats) Resolution {
	outgoing := make(map[string][]domain.Relationship, len(eligible))
	for _, rel := range rels {
		outgoing[rel.SourceID] = append(outgoing[rel.SourceID], rel)
	}
	for id := range outgoing {
		sort.Slice(outgoing[id], func(i, j int) bool {
			a, b := outgoing[id][i], outgoing[id][j]
			if a.Type != b.Type {
				return a.Type < b.Type
			}
			if a.TargetID != b.TargetID {
				return a.TargetID < b.TargetID
			}
			return a.ID < b.ID
		})
	}

	distance := map[string]int{root.ID: 0}
	queue := []string{root.ID}
	maxReached := 0
	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]
		depth := distance[currentID]
		if maxDepth > 0 && depth >= maxDepth {
			continue
		}
		for _, rel := range outgoing[currentID] {
			if _, visited := distance[rel.TargetID]; visited {
				continue
			}
			distance[rel.TargetID] = depth + 1
			if depth+1 > maxReached {
				maxReached = depth + 1
			}
			queue = append(queue, rel.TargetID)
		}
	}

	elements := make([]domain.Element, 0, len(distance))
	for id := range distance {
		elements = append(elements, eligible[id])
	}
	sort.Slice(elements, func(i, j int) bool {
		a, b := elements[i], elements[j]
		if distance[a.ID] != distance[b.ID] {
			return distance[a.ID] < distance[b.ID]
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})

	var selectedRels []domain.Relationship
	for _, rel := range rels {
		if _, ok := distance[rel.SourceID]; !ok {
			continue
		}
		if _, ok := distance[rel.TargetID]; !ok {
			continue
		}
		selectedRels = append(selectedRels, rel)
	}

	ids := make([]string, len(elements))
	for i, e := range elements {
		ids[i] = e.ID
	}
	stats.SelectedElements = len(elements)
	stats.SelectedRelationships = len(selectedRels)
	stats.MaxDepthReached = maxReached
	return Resolution{ElementIDs: ids, Elements: elements, Relationships: selectedRels, Stats: stats}
}

// fingerprint hashes the resolution-relevant fields of a definition: id,
// type, root, depth, and the sorted allowed-type lists. Equal projections
// share a key regardless of the order types were declared in.
func fingerprint(view domain.ViewDefinition) string {
	elementTypes := make([]string, len(view.AllowedElementTypes))
	for i, t := range view.AllowedElementTypes {
		elementTypes[i] = string(t)
	}
	sort.Strings(elementTypes)
	relationshipTypes := make([]string, len(view.AllowedRelationshipTypes))
	for i, t := range view.AllowedRelationshipTypes {
		relationshipTypes[i] = string(t)
	}
	sort.Strings(relationshipTypes)

	var b strings.Builder
	b.WriteString(view.ID)
	b.WriteByte('\x00')
	b.WriteString(view.ViewType)
	b.WriteByte('\x00')
	b.WriteString(view.RootElementID)
	b.WriteByte('\x00')
	fmt.Fprintf(&b, "%d", view.MaxDepth)
	b.WriteByte('\x00')
	b.WriteString(strings.Join(elementTypes, ","))
	b.WriteByte('\x00')
	b.WriteString(strings.Join(relationshipTypes, ","))
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

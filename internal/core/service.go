// Package core implements the in-memory architecture graph store: typed
// element and relationship repositories with revision-tracked invalidation,
// a pre-commit validation gate, atomic bulk replace, and the two-tier caching
// that backs deterministic view resolution.
package core

import (
	"context"
	"time"

	"archgraph/internal/cache"
	"archgraph/internal/semantics"
	"archgraph/pkg/domain"
)

// Service is the collaborator-facing facade over the graph store, the view
// definition store, the query cache, and the resolver. It is constructed
// explicitly and passed by handle; there is no package-level singleton.
type Service struct {
	graph    *GraphStore
	views    *ViewStore
	queries  *QueryCache
	resolver *Resolver
	gate     *Gate
	logger   Logger
	metrics  MetricsRecorder
}

type serviceOptions struct {
	mode    domain.ValidationMode
	logger  Logger
	metrics MetricsRecorder
	table   *semantics.Table
	rules   []domain.Rule
	nowFn   func() time.Time
}

// Option configures a Service at construction time.
type Option func(*serviceOptions)

// WithLogger installs a structured logger. Default is silent.
func WithLogger(logger Logger) Option {
	return func(o *serviceOptions) { o.logger = logger }
}

// WithMetrics installs a metrics recorder. Default discards observations.
func WithMetrics(metrics MetricsRecorder) Option {
	return func(o *serviceOptions) { o.metrics = metrics }
}

// WithValidationMode sets the default gate enforcement level. Default strict.
func WithValidationMode(mode domain.ValidationMode) Option {
	return func(o *serviceOptions) { o.mode = mode }
}

// WithSemantics substitutes the relationship endpoint rule table.
func WithSemantics(table *semantics.Table) Option {
	return func(o *serviceOptions) { o.table = table }
}

// WithRules registers governance rules on top of the structural set.
func WithRules(rules ...domain.Rule) Option {
	return func(o *serviceOptions) { o.rules = append(o.rules, rules...) }
}

// WithClock overrides the timestamp source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) { o.nowFn = now }
}

// NewService wires a complete, empty graph store stack.
func NewService(opts ...Option) *Service {
	o := serviceOptions{
		mode:    domain.ModeStrict,
		logger:  noopLogger{},
		metrics: noopMetrics{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	gate := NewGate(o.table)
	for _, rule := range o.rules {
		gate.Register(rule)
	}

	graph := NewGraphStore(gate, o.mode, o.logger)
	views := NewViewStore(o.logger)
	if o.nowFn != nil {
		graph.nowFn = o.nowFn
		views.nowFn = o.nowFn
	}

	svc := &Service{
		graph:   graph,
		views:   views,
		gate:    gate,
		logger:  o.logger,
		metrics: o.metrics,
	}
	revKey := func() string { return svc.RevisionKey().String() }
	svc.queries = NewQueryCache(graph, revKey)
	svc.resolver = NewResolver(graph, svc.queries, revKey, o.logger)
	return svc
}

// Graph returns the underlying graph store handle.
func (s *Service) Graph() *GraphStore { return s.graph }

// Views returns the underlying view definition store handle.
func (s *Service) Views() *ViewStore { return s.views }

// Gate returns the validation gate so the governance layer can stack rules.
func (s *Service) Gate() *Gate { return s.gate }

// RevisionKey snapshots the three store revision counters.
func (s *Service) RevisionKey() RevisionKey {
	return RevisionKey{
		Elements:      s.graph.ElementRevision(),
		Relationships: s.graph.RelationshipRevision(),
		Views:         s.views.Revision(),
	}
}

// Subscribe registers an observer for committed mutations of all three stores.
func (s *Service) Subscribe(fn func(Notification)) {
	s.graph.Subscribe(fn)
	s.views.Subscribe(fn)
}

func (s *Service) observe(ctx context.Context, operation string, start time.Time, err error) {
	s.metrics.Observe(ctx, operation, err == nil, time.Since(start))
}

// Mutation surface ----------------------------------------------------------

// AddElement inserts a new element into the named collection.
func (s *Service) AddElement(ctx context.Context, collection domain.ElementType, element domain.Element) (domain.Element, domain.Result, error) {
	start := time.Now()
	created, res, err := s.graph.AddElement(ctx, collection, element)
	s.observe(ctx, "add_element", start, err)
	return created, res, err
}

// UpdateElementLifecycle transitions an element's lifecycle status.
func (s *Service) UpdateElementLifecycle(ctx context.Context, id string, status domain.LifecycleStatus, stamp domain.AuditStamp) (domain.Element, domain.Result, error) {
	start := time.Now()
	updated, res, err := s.graph.UpdateElementLifecycle(ctx, id, status, stamp)
	s.observe(ctx, "update_element_lifecycle", start, err)
	return updated, res, err
}

// RemoveElementByID deletes an element without cascading.
func (s *Service) RemoveElementByID(ctx context.Context, id string) (domain.Result, error) {
	start := time.Now()
	res, err := s.graph.RemoveElementByID(ctx, id)
	s.observe(ctx, "remove_element", start, err)
	return res, err
}

// AddRelationship inserts a new directed edge.
func (s *Service) AddRelationship(ctx context.Context, rel domain.Relationship) (domain.Relationship, domain.Result, error) {
	start := time.Now()
	created, res, err := s.graph.AddRelationship(ctx, rel)
	s.observe(ctx, "add_relationship", start, err)
	return created, res, err
}

// RemoveRelationshipsForElement removes every edge touching the element.
func (s *Service) RemoveRelationshipsForElement(ctx context.Context, elementID string) ([]domain.Relationship, error) {
	start := time.Now()
	removed, err := s.graph.RemoveRelationshipsForElement(ctx, elementID)
	s.observe(ctx, "remove_relationships_for_element", start, err)
	return removed, err
}

// ReplaceStore atomically swaps the whole graph for the snapshot content.
func (s *Service) ReplaceStore(ctx context.Context, snapshot Snapshot, opts ReplaceOptions) (domain.Result, error) {
	start := time.Now()
	res, err := s.graph.ReplaceStore(ctx, snapshot, opts)
	s.observe(ctx, "replace_store", start, err)
	return res, err
}

// Query surface (served through the query cache tier) -----------------------

// GetElementByID retrieves an element.
func (s *Service) GetElementByID(id string) (domain.Element, bool) {
	return s.queries.ElementByID(id)
}

// GetElementsByType returns one typed collection ordered by (name, id).
func (s *Service) GetElementsByType(t domain.ElementType) []domain.Element {
	return s.queries.ElementsByType(t)
}

// GetAllRelationships returns every relationship in canonical order.
func (s *Service) GetAllRelationships() []domain.Relationship {
	return s.graph.GetAllRelationships()
}

// GetRelationshipsForElement returns edges touching the element either way.
func (s *Service) GetRelationshipsForElement(elementID string) []domain.Relationship {
	return s.graph.GetRelationshipsForElement(elementID)
}

// GetRelationshipsByType returns edges of one type.
func (s *Service) GetRelationshipsByType(t domain.RelationshipType) []domain.Relationship {
	return s.graph.GetRelationshipsByType(t)
}

// GetOutgoingRelationships returns the element's outgoing edges, cached.
func (s *Service) GetOutgoingRelationships(elementID string) []domain.Relationship {
	return s.queries.Outgoing(elementID)
}

// GetIncomingRelationships returns the element's incoming edges, cached.
func (s *Service) GetIncomingRelationships(elementID string) []domain.Relationship {
	return s.queries.Incoming(elementID)
}

// View lifecycle ------------------------------------------------------------

// CreateView validates and stores a new view definition.
func (s *Service) CreateView(ctx context.Context, v domain.ViewDefinition) (domain.ViewDefinition, error) {
	start := time.Now()
	created, err := s.views.CreateView(ctx, v)
	s.observe(ctx, "create_view", start, err)
	return created, err
}

// UpdateViewRoot repoints an existing view's traversal root.
func (s *Service) UpdateViewRoot(ctx context.Context, id, rootElementID string, stamp domain.AuditStamp) (domain.ViewDefinition, error) {
	start := time.Now()
	updated, err := s.views.UpdateViewRoot(ctx, id, rootElementID, stamp)
	s.observe(ctx, "update_view_root", start, err)
	return updated, err
}

// DeleteViewByID removes a view definition.
func (s *Service) DeleteViewByID(ctx context.Context, id string) error {
	start := time.Now()
	err := s.views.DeleteViewByID(ctx, id)
	s.observe(ctx, "delete_view", start, err)
	return err
}

// GetViewByID retrieves a view definition.
func (s *Service) GetViewByID(id string) (domain.ViewDefinition, bool) {
	return s.views.GetViewByID(id)
}

// ListAllViews returns every view definition in canonical order.
func (s *Service) ListAllViews() []domain.ViewDefinition {
	return s.views.ListAllViews()
}

// GetViewsByType returns view definitions of one view type.
func (s *Service) GetViewsByType(viewType string) []domain.ViewDefinition {
	return s.views.GetViewsByType(viewType)
}

// Resolution ----------------------------------------------------------------

// Resolve projects the view definition over the current graph.
func (s *Service) Resolve(ctx context.Context, view domain.ViewDefinition) Resolution {
	start := time.Now()
	resolution := s.resolver.Resolve(ctx, view)
	s.observe(ctx, "resolve", start, nil)
	return resolution
}

// ResolveByID resolves a stored view definition. An unknown id resolves to an
// empty selection, matching the resolver's soft-failure policy.
func (s *Service) ResolveByID(ctx context.Context, viewID string) Resolution {
	view, ok := s.views.GetViewByID(viewID)
	if !ok {
		return Resolution{ElementIDs: []string{}, Elements: []domain.Element{}, Relationships: []domain.Relationship{}}
	}
	return s.Resolve(ctx, view)
}

// DependencyCycles reports every distinct cycle in the DEPENDS_ON edge set.
// Cycles are legal in the graph; this is a diagnostic for architects chasing
// circular dependencies, not a gate.
func (s *Service) DependencyCycles() []semantics.Cycle {
	return semantics.DetectCycles(s.graph.GetRelationshipsByType(domain.RelationshipDependsOn))
}

// Observability -------------------------------------------------------------

// QueryCacheStats returns aggregated counters for the query cache tier.
func (s *Service) QueryCacheStats() cache.Stats { return s.queries.Stats() }

// ResolutionCacheStats returns counters for the resolution cache tier.
func (s *Service) ResolutionCacheStats() cache.Stats { return s.resolver.CacheStats() }

// CacheCollectors returns prometheus collectors for both cache tiers.
func (s *Service) CacheCollectors() []*CacheStatsCollector {
	return []*CacheStatsCollector{
		NewCacheStatsCollector("query", s.queries.Stats),
		NewCacheStatsCollector("resolution", s.resolver.CacheStats),
	}
}

// Reset drops all store content and cached projections. Exposed for test
// harnesses only; production collaborators have no business calling it.
func (s *Service) Reset() {
	s.graph.mu.Lock()
	s.graph.state = newGraphState()
	s.graph.mu.Unlock()

	s.views.mu.Lock()
	s.views.views = make(map[string]domain.ViewDefinition)
	s.views.mu.Unlock()

	s.graph.elemRev.Add(1)
	s.graph.relRev.Add(1)
	s.views.rev.Add(1)
	s.queries.Purge()
	s.resolver.PurgeCache()
	s.logger.Info("store reset")
}

package core

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"archgraph/pkg/domain"
)

// ViewStore holds declarative view definitions. Definitions are immutable
// after creation apart from the explicit root-update operation. The store
// keeps its own revision counter, which participates in the composite cache
// key so resolution entries die when a definition changes.
//
// Definitions never embed element or relationship payloads; the closed
// ViewDefinition struct makes that unrepresentable, and creation rejects
// anything else that would make a definition unresolvable.
type ViewStore struct {
	mu       sync.RWMutex
	views    map[string]domain.ViewDefinition
	rev      atomic.Uint64
	nowFn    func() time.Time
	logger   Logger
	watchers []func(Notification)
}

// NewViewStore constructs an empty view definition store.
func NewViewStore(logger Logger) *ViewStore {
	if logger == nil {
		logger = noopLogger{}
	}
	return &ViewStore{
		views:  make(map[string]domain.ViewDefinition),
		nowFn:  func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

// Revision returns the view store's monotonic mutation counter.
func (s *ViewStore) Revision() uint64 { return s.rev.Load() }

// Subscribe registers a callback invoked after every committed view mutation.
func (s *ViewStore) Subscribe(fn func(Notification)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

// commitLocked bumps the revision and snapshots the watcher list. It must run
// while the caller still holds the write lock so no reader can observe new
// view content under the old revision. Delivery happens after unlock.
func (s *ViewStore) commitLocked(changes []domain.Change) (Notification, []func(Notification)) {
	rev := s.rev.Add(1)
	watchers := make([]func(Notification), len(s.watchers))
	copy(watchers, s.watchers)
	return Notification{Store: StoreViews, Revision: rev, Changes: changes}, watchers
}

func deliver(n Notification, watchers []func(Notification)) {
	for _, w := range watchers {
		w(n)
	}
}

func validateViewDefinition(v domain.ViewDefinition) error {
	if len(v.AllowedElementTypes) == 0 {
		return domain.NewError(domain.CodeInvalidView, v.ID, "allowed element types must not be empty")
	}
	for _, t := range v.AllowedElementTypes {
		if !t.Known() {
			return domain.NewError(domain.CodeInvalidView, v.ID, "unknown element type %q", t)
		}
	}
	for _, t := range v.AllowedRelationshipTypes {
		if !t.Known() {
			return domain.NewError(domain.CodeInvalidView, v.ID, "unknown relationship type %q", t)
		}
	}
	if v.MaxDepth < 0 {
		return domain.NewError(domain.CodeInvalidView, v.ID, "max depth must not be negative")
	}
	return nil
}

// CreateView validates and stores a new view definition. A blank id is
// assigned automatically.
func (s *ViewStore) CreateView(_ context.Context, v domain.ViewDefinition) (domain.ViewDefinition, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if err := validateViewDefinition(v); err != nil {
		return domain.ViewDefinition{}, err
	}

	s.mu.Lock()
	if _, exists := s.views[v.ID]; exists {
		s.mu.Unlock()
		return domain.ViewDefinition{}, domain.NewError(domain.CodeDuplicateID, v.ID, "view id already in use")
	}
	now := s.nowFn()
	v.CreatedAt = now
	v.UpdatedAt = now
	v.AllowedElementTypes = normalizeElementTypes(v.AllowedElementTypes)
	v.AllowedRelationshipTypes = normalizeRelationshipTypes(v.AllowedRelationshipTypes)
	s.views[v.ID] = v
	n, watchers := s.commitLocked([]domain.Change{{Entity: domain.EntityView, Action: domain.ActionCreate, After: v}})
	s.mu.Unlock()

	deliver(n, watchers)
	s.logger.Info("view created", "id", v.ID, "type", v.ViewType)
	return v, nil
}

// UpdateViewRoot is the only mutation allowed on an existing definition: it
// repoints the traversal root and stamps the update.
func (s *ViewStore) UpdateViewRoot(_ context.Context, id, rootElementID string, stamp domain.AuditStamp) (domain.ViewDefinition, error) {
	s.mu.Lock()
	current, ok := s.views[id]
	if !ok {
		s.mu.Unlock()
		return domain.ViewDefinition{}, domain.NewError(domain.CodeNotFound, id, "view not found")
	}
	before := current
	current.RootElementID = rootElementID
	current.UpdatedAt = stamp.At
	if stamp.At.IsZero() {
		current.UpdatedAt = s.nowFn()
	}
	current.UpdatedBy = stamp.By
	s.views[id] = current
	n, watchers := s.commitLocked([]domain.Change{{Entity: domain.EntityView, Action: domain.ActionUpdate, Before: before, After: current}})
	s.mu.Unlock()

	deliver(n, watchers)
	return current, nil
}

// DeleteViewByID removes a view definition.
func (s *ViewStore) DeleteViewByID(_ context.Context, id string) error {
	s.mu.Lock()
	current, ok := s.views[id]
	if !ok {
		s.mu.Unlock()
		return domain.NewError(domain.CodeNotFound, id, "view not found")
	}
	delete(s.views, id)
	n, watchers := s.commitLocked([]domain.Change{{Entity: domain.EntityView, Action: domain.ActionDelete, Before: current}})
	s.mu.Unlock()

	deliver(n, watchers)
	return nil
}

// GetViewByID retrieves a view definition.
func (s *ViewStore) GetViewByID(id string) (domain.ViewDefinition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.views[id]
	return v, ok
}

// ListAllViews returns every definition ordered by (view type, name, id).
func (s *ViewStore) ListAllViews() []domain.ViewDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ViewDefinition, 0, len(s.views))
	for _, v := range s.views {
		out = append(out, v)
	}
	sortViews(out)
	return out
}

// GetViewsByType returns definitions of one view type.
func (s *ViewStore) GetViewsByType(viewType string) []domain.ViewDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.ViewDefinition
	for _, v := range s.views {
		if v.ViewType == viewType {
			out = append(out, v)
		}
	}
	sortViews(out)
	return out
}

func sortViews(views []domain.ViewDefinition) {
	sort.Slice(views, func(i, j int) bool {
		a, b := views[i], views[j]
		if a.ViewType != b.ViewType {
			return a.ViewType < b.ViewType
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

// normalizeElementTypes sorts and deduplicates the allowed set so equivalent
// definitions fingerprint identically.
func normalizeElementTypes(types []domain.ElementType) []domain.ElementType {
	seen := make(map[domain.ElementType]struct{}, len(types))
	out := make([]domain.ElementType, 0, len(types))
	for _, t := range types {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func normalizeRelationshipTypes(types []domain.RelationshipType) []domain.RelationshipType {
	seen := make(map[domain.RelationshipType]struct{}, len(types))
	out := make([]domain.RelationshipType, 0, len(types))
	for _, t := range types {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

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

// graphState holds the committed graph. Elements across all typed collections
// share one id space; relationships have their own.
type graphState struct {
	elements      map[string]domain.Element
	relationships map[string]domain.Relationship
}

func newGraphState() graphState {
	return graphState{
		elements:      make(map[string]domain.Element),
		relationships: make(map[string]domain.Relationship),
	}
}

func (s graphState) clone() graphState {
	cloned := newGraphState()
	for k, v := range s.elements {
		cloned.elements[k] = v
	}
	for k, v := range s.relationships {
		cloned.relationships[k] = v
	}
	return cloned
}

// stateView adapts a graphState to the rule evaluation interface. Rules always
// see the candidate state, never the committed one.
type stateView struct {
	state *graphState
}

func (v stateView) ListElements() []domain.Element {
	out := make([]domain.Element, 0, len(v.state.elements))
	for _, e := range v.state.elements {
		out = append(out, e)
	}
	sortElements(out)
	return out
}

func (v stateView) ListRelationships() []domain.Relationship {
	out := make([]domain.Relationship, 0, len(v.state.relationships))
	for _, r := range v.state.relationships {
		out = append(out, r)
	}
	sortRelationships(out)
	return out
}

func (v stateView) FindElement(id string) (domain.Element, bool) {
	e, ok := v.state.elements[id]
	return e, ok
}

func (v stateView) FindRelationship(id string) (domain.Relationship, bool) {
	r, ok := v.state.relationships[id]
	return r, ok
}

// GraphStore is the single owner of element and relationship state. All
// mutation goes through it, and every mutation passes the validation gate
// before the candidate state is swapped in. Element and relationship
// revisions advance independently, exactly once per committed write.
type GraphStore struct {
	mu       sync.RWMutex
	state    graphState
	gate     *Gate
	mode     domain.ValidationMode
	logger   Logger
	nowFn    func() time.Time
	elemRev  atomic.Uint64
	relRev   atomic.Uint64
	watchers []func(Notification)
}

// NewGraphStore constructs an empty store guarded by the supplied gate. A nil
// gate gets the default structural rule set.
func NewGraphStore(gate *Gate, mode domain.ValidationMode, logger Logger) *GraphStore {
	if gate == nil {
		gate = NewGate(nil)
	}
	if logger == nil {
		logger = noopLogger{}
	}
	if mode == "" {
		mode = domain.ModeStrict
	}
	return &GraphStore{
		state:  newGraphState(),
		gate:   gate,
		mode:   mode,
		logger: logger,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// ElementRevision returns the element store's monotonic mutation counter.
func (s *GraphStore) ElementRevision() uint64 { return s.elemRev.Load() }

// RelationshipRevision returns the relationship store's mutation counter.
func (s *GraphStore) RelationshipRevision() uint64 { return s.relRev.Load() }

func (s *GraphStore) newID() string { return uuid.NewString() }

// commit clones the committed state, applies mutate to the clone, runs the
// gate over the candidate, and swaps on success. Failed mutations leave state
// and revisions untouched. Observers are notified after the lock is released
// so they may read the store.
func (s *GraphStore) commit(ctx context.Context, mode domain.ValidationMode, mutate func(state *graphState, now time.Time) ([]domain.Change, error)) (domain.Result, error) {
	s.mu.Lock()
	candidate := s.state.clone()
	now := s.nowFn()

	changes, err := mutate(&candidate, now)
	if err != nil {
		s.mu.Unlock()
		return domain.Result{}, err
	}

	res, err := s.gate.ValidateOnSave(ctx, stateView{state: &candidate}, changes, mode)
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("commit rejected by validation gate", "violations", len(res.Violations))
		return res, err
	}

	s.state = candidate
	notifications := s.bumpRevisions(changes)
	watchers := make([]func(Notification), len(s.watchers))
	copy(watchers, s.watchers)
	s.mu.Unlock()

	for _, n := range notifications {
		for _, w := range watchers {
			w(n)
		}
	}
	return res, nil
}

// bumpRevisions advances each store counter at most once per commit and
// builds the corresponding observer notifications. Caller holds the lock.
func (s *GraphStore) bumpRevisions(changes []domain.Change) []Notification {
	var elemChanges, relChanges []domain.Change
	for _, c := range changes {
		switch c.Entity {
		case domain.EntityElement:
			elemChanges = append(elemChanges, c)
		case domain.EntityRelationship:
			relChanges = append(relChanges, c)
		}
	}
	var out []Notification
	if len(elemChanges) > 0 {
		rev := s.elemRev.Add(1)
		out = append(out, Notification{Store: StoreElements, Revision: rev, Changes: elemChanges})
	}
	if len(relChanges) > 0 {
		rev := s.relRev.Add(1)
		out = append(out, Notification{Store: StoreRelationships, Revision: rev, Changes: relChanges})
	}
	return out
}

// AddElement inserts a new element into the named collection. The element's
// type must belong to the collection, and its id must be unused across every
// collection. A blank id is assigned automatically.
func (s *GraphStore) AddElement(ctx context.Context, collection domain.ElementType, element domain.Element) (domain.Element, domain.Result, error) {
	if !collection.Known() {
		return domain.Element{}, domain.Result{}, domain.NewError(domain.CodeInvalidCollection, element.ID, "unknown collection %q", collection)
	}
	if element.Type != collection {
		return domain.Element{}, domain.Result{}, domain.NewError(domain.CodeInvalidCollection, element.ID,
			"element type %q does not belong to collection %q", element.Type, collection)
	}

	var created domain.Element
	res, err := s.commit(ctx, s.mode, func(state *graphState, now time.Time) ([]domain.Change, error) {
		if element.ID == "" {
			element.ID = s.newID()
		}
		if _, exists := state.elements[element.ID]; exists {
			return nil, domain.NewError(domain.CodeDuplicateID, element.ID, "element id already in use")
		}
		if element.Lifecycle == "" {
			element.Lifecycle = domain.StatusPlanned
		} else if !element.Lifecycle.Known() {
			return nil, domain.NewError(domain.CodeInvalidLifecycle, element.ID, "unknown lifecycle status %q", element.Lifecycle)
		}
		if element.Approval == "" {
			element.Approval = domain.ApprovalDraft
		}
		element.CreatedAt = now
		element.UpdatedAt = now
		state.elements[element.ID] = element
		created = element
		return []domain.Change{{Entity: domain.EntityElement, Action: domain.ActionCreate, After: element}}, nil
	})
	if err != nil {
		return domain.Element{}, res, err
	}
	s.logger.Info("element added", "id", created.ID, "type", string(created.Type))
	return created, res, nil
}

// UpdateElementLifecycle transitions an element's lifecycle status and records
// the audit stamp. The element's type is immutable; only status and audit
// fields change.
func (s *GraphStore) UpdateElementLifecycle(ctx context.Context, id string, status domain.LifecycleStatus, stamp domain.AuditStamp) (domain.Element, domain.Result, error) {
	if !status.Known() {
		return domain.Element{}, domain.Result{}, domain.NewError(domain.CodeInvalidLifecycle, id, "unknown lifecycle status %q", status)
	}
	var updated domain.Element
	res, err := s.commit(ctx, s.mode, func(state *graphState, now time.Time) ([]domain.Change, error) {
		current, ok := state.elements[id]
		if !ok {
			return nil, domain.NewError(domain.CodeNotFound, id, "element not found")
		}
		before := current
		current.Lifecycle = status
		current.UpdatedAt = stamp.At
		if stamp.At.IsZero() {
			current.UpdatedAt = now
		}
		current.UpdatedBy = stamp.By
		state.elements[id] = current
		updated = current
		return []domain.Change{{Entity: domain.EntityElement, Action: domain.ActionUpdate, Before: before, After: current}}, nil
	})
	if err != nil {
		return domain.Element{}, res, err
	}
	return updated, res, nil
}

// RemoveElementByID deletes an element. It never cascades: dependent
// relationships must be removed first or the referential integrity rule will
// block the commit in strict mode.
func (s *GraphStore) RemoveElementByID(ctx context.Context, id string) (domain.Result, error) {
	return s.commit(ctx, s.mode, func(state *graphState, now time.Time) ([]domain.Change, error) {
		current, ok := state.elements[id]
		if !ok {
			return nil, domain.NewError(domain.CodeNotFound, id, "element not found")
		}
		delete(state.elements, id)
		return []domain.Change{{Entity: domain.EntityElement, Action: domain.ActionDelete, Before: current}}, nil
	})
}

// GetElementByID retrieves an element from committed state.
func (s *GraphStore) GetElementByID(id string) (domain.Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.state.elements[id]
	return e, ok
}

// GetElementsByType returns the collection for one element type, ordered by
// (name, id).
func (s *GraphStore) GetElementsByType(t domain.ElementType) []domain.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Element
	for _, e := range s.state.elements {
		if e.Type == t {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ListElements returns every element, ordered by (type, name, id).
func (s *GraphStore) ListElements() []domain.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Element, 0, len(s.state.elements))
	for _, e := range s.state.elements {
		out = append(out, e)
	}
	sortElements(out)
	return out
}

func sortElements(elements []domain.Element) {
	sort.Slice(elements, func(i, j int) bool {
		a, b := elements[i], elements[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

func sortRelationships(relationships []domain.Relationship) {
	sort.Slice(relationships, func(i, j int) bool {
		a, b := relationships[i], relationships[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.SourceID != b.SourceID {
			return a.SourceID < b.SourceID
		}
		if a.TargetID != b.TargetID {
			return a.TargetID < b.TargetID
		}
		return a.ID < b.ID
	})
}

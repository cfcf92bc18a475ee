package core

import "archgraph/pkg/domain"

// StoreName identifies which revision counter a notification refers to.
type StoreName string

// Store identifiers used in change notifications.
const (
	StoreElements      StoreName = "elements"
	StoreRelationships StoreName = "relationships"
	StoreViews         StoreName = "views"
)

// Notification describes one committed revision step of one store, with the
// change records that produced it. Collaborators use the revision for their
// own cache coherence.
type Notification struct {
	Store    StoreName
	Revision uint64
	Changes  []domain.Change
}

// Subscribe registers a callback invoked synchronously after every committed
// mutation, once per store whose revision advanced. Callbacks run outside the
// store lock and may query the store.
func (s *GraphStore) Subscribe(fn func(Notification)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

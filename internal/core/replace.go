package core

import (
	"context"
	"time"

	"archgraph/pkg/domain"
)

// Snapshot is the payload of a transactional bulk replace: the complete
// element and relationship content that should become the store state.
type Snapshot struct {
	Elements      []domain.Element
	Relationships []domain.Relationship
}

// ReplaceOptions tunes a bulk replace.
type ReplaceOptions struct {
	// Mode overrides the store's validation mode for this replace.
	// Empty means use the store default.
	Mode domain.ValidationMode
	// Stamp is applied to records that carry no audit stamps of their own.
	Stamp domain.AuditStamp
}

// ReplaceStore atomically swaps the entire graph for the snapshot content.
// The candidate state is assembled in isolation and the full gate runs over
// it; a rejected replace returns the validation failures and leaves committed
// state, revisions, and caches untouched. A committed replace bumps each
// store revision exactly once.
func (s *GraphStore) ReplaceStore(ctx context.Context, snapshot Snapshot, opts ReplaceOptions) (domain.Result, error) {
	mode := opts.Mode
	if mode == "" {
		mode = s.mode
	}

	res, err := s.commit(ctx, mode, func(state *graphState, now time.Time) ([]domain.Change, error) {
		next := newGraphState()
		stampAt := opts.Stamp.At
		if stampAt.IsZero() {
			stampAt = now
		}

		for _, e := range snapshot.Elements {
			if e.ID == "" {
				e.ID = s.newID()
			}
			if _, dup := next.elements[e.ID]; dup {
				return nil, domain.NewError(domain.CodeDuplicateID, e.ID, "duplicate element id in snapshot")
			}
			if !e.Type.Known() {
				return nil, domain.NewError(domain.CodeInvalidCollection, e.ID, "unknown element type %q", e.Type)
			}
			if e.Lifecycle == "" {
				e.Lifecycle = domain.StatusPlanned
			} else if !e.Lifecycle.Known() {
				return nil, domain.NewError(domain.CodeInvalidLifecycle, e.ID, "unknown lifecycle status %q", e.Lifecycle)
			}
			if e.Approval == "" {
				e.Approval = domain.ApprovalDraft
			}
			if e.CreatedAt.IsZero() {
				e.CreatedAt = stampAt
				e.CreatedBy = opts.Stamp.By
			}
			if e.UpdatedAt.IsZero() {
				e.UpdatedAt = stampAt
				e.UpdatedBy = opts.Stamp.By
			}
			next.elements[e.ID] = e
		}

		for _, r := range snapshot.Relationships {
			if r.ID == "" {
				r.ID = s.newID()
			}
			if _, dup := next.relationships[r.ID]; dup {
				return nil, domain.NewError(domain.CodeDuplicateID, r.ID, "duplicate relationship id in snapshot")
			}
			if source, ok := next.elements[r.SourceID]; ok && r.SourceType == "" {
				r.SourceType = source.Type
			}
			if target, ok := next.elements[r.TargetID]; ok && r.TargetType == "" {
				r.TargetType = target.Type
			}
			if r.Lifecycle == "" {
				r.Lifecycle = domain.StatusActive
			} else if !r.Lifecycle.Known() {
				return nil, domain.NewError(domain.CodeInvalidLifecycle, r.ID, "unknown lifecycle status %q", r.Lifecycle)
			}
			if r.CreatedAt.IsZero() {
				r.CreatedAt = stampAt
				r.CreatedBy = opts.Stamp.By
			}
			if r.UpdatedAt.IsZero() {
				r.UpdatedAt = stampAt
				r.UpdatedBy = opts.Stamp.By
			}
			next.relationships[r.ID] = r
		}

		*state = next
		return []domain.Change{
			{Entity: domain.EntityElement, Action: domain.ActionReplace},
			{Entity: domain.EntityRelationship, Action: domain.ActionReplace},
		}, nil
	})
	if err != nil {
		return res, err
	}
	s.logger.Info("store replaced", "elements", len(snapshot.Elements), "relationships", len(snapshot.Relationships))
	return res, nil
}

package core

import (
	"context"
	"time"

	"archgraph/pkg/domain"
)

// AddRelationship inserts a new directed edge. Endpoint ids must resolve to
// existing elements, declared endpoint types must match the referenced
// elements' actual types, and the (source, target) type pair must be allowed
// by the semantics table for the relationship type. Blank declared types are
// filled in from the referenced elements. Checks run against current state,
// never a snapshot taken before the call.
func (s *GraphStore) AddRelationship(ctx context.Context, rel domain.Relationship) (domain.Relationship, domain.Result, error) {
	var created domain.Relationship
	res, err := s.commit(ctx, s.mode, func(state *graphState, now time.Time) ([]domain.Change, error) {
		if rel.ID == "" {
			rel.ID = s.newID()
		}
		if _, exists := state.relationships[rel.ID]; exists {
			return nil, domain.NewError(domain.CodeDuplicateID, rel.ID, "relationship id already in use")
		}

		source, ok := state.elements[rel.SourceID]
		if !ok {
			return nil, domain.NewError(domain.CodeUnknownEndpoint, rel.ID, "source element %q not found", rel.SourceID)
		}
		target, ok := state.elements[rel.TargetID]
		if !ok {
			return nil, domain.NewError(domain.CodeUnknownEndpoint, rel.ID, "target element %q not found", rel.TargetID)
		}

		if rel.SourceType == "" {
			rel.SourceType = source.Type
		} else if rel.SourceType != source.Type {
			return nil, domain.NewError(domain.CodeEndpointTypeMismatch, rel.ID,
				"declared source type %q but element %q is %q", rel.SourceType, rel.SourceID, source.Type)
		}
		if rel.TargetType == "" {
			rel.TargetType = target.Type
		} else if rel.TargetType != target.Type {
			return nil, domain.NewError(domain.CodeEndpointTypeMismatch, rel.ID,
				"declared target type %q but element %q is %q", rel.TargetType, rel.TargetID, target.Type)
		}

		table := s.gate.Semantics()
		if !table.Knows(rel.Type) {
			return nil, domain.NewError(domain.CodeInvalidEndpointPair, rel.ID,
				"no semantics rule for relationship type %q", rel.Type)
		}
		if !table.Allows(rel.Type, rel.SourceType, rel.TargetType) {
			return nil, domain.NewError(domain.CodeInvalidEndpointPair, rel.ID,
				"%q does not allow %q -> %q", rel.Type, rel.SourceType, rel.TargetType)
		}

		if rel.Lifecycle == "" {
			rel.Lifecycle = domain.StatusActive
		} else if !rel.Lifecycle.Known() {
			return nil, domain.NewError(domain.CodeInvalidLifecycle, rel.ID, "unknown lifecycle status %q", rel.Lifecycle)
		}
		rel.CreatedAt = now
		rel.UpdatedAt = now
		state.relationships[rel.ID] = rel
		created = rel
		return []domain.Change{{Entity: domain.EntityRelationship, Action: domain.ActionCreate, After: rel}}, nil
	})
	if err != nil {
		return domain.Relationship{}, res, err
	}
	s.logger.Info("relationship added", "id", created.ID, "type", string(created.Type),
		"source", created.SourceID, "target", created.TargetID)
	return created, res, nil
}

// RemoveRelationshipsForElement deletes every relationship touching the
// element as source or target and returns the removed set. The operation is
// total: an element with no relationships removes nothing and succeeds. The
// relationship revision moves only when at least one edge was removed.
func (s *GraphStore) RemoveRelationshipsForElement(ctx context.Context, elementID string) ([]domain.Relationship, error) {
	// Advisory mode: edge removal can never be blocked, only warned about.
	var removed []domain.Relationship
	_, err := s.commit(ctx, domain.ModeAdvisory, func(state *graphState, now time.Time) ([]domain.Change, error) {
		var changes []domain.Change
		for id, rel := range state.relationships {
			if rel.SourceID != elementID && rel.TargetID != elementID {
				continue
			}
			delete(state.relationships, id)
			removed = append(removed, rel)
			changes = append(changes, domain.Change{Entity: domain.EntityRelationship, Action: domain.ActionDelete, Before: rel})
		}
		sortRelationships(removed)
		return changes, nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// GetAllRelationships returns every relationship ordered by
// (type, sourceID, targetID, id).
func (s *GraphStore) GetAllRelationships() []domain.Relationship {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Relationship, 0, len(s.state.relationships))
	for _, r := range s.state.relationships {
		out = append(out, r)
	}
	sortRelationships(out)
	return out
}

// GetRelationshipsForElement returns relationships where the element appears
// as source or target.
func (s *GraphStore) GetRelationshipsForElement(elementID string) []domain.Relationship {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Relationship
	for _, r := range s.state.relationships {
		if r.SourceID == elementID || r.TargetID == elementID {
			out = append(out, r)
		}
	}
	sortRelationships(out)
	return out
}

// GetRelationshipsByType returns relationships of one type.
func (s *GraphStore) GetRelationshipsByType(t domain.RelationshipType) []domain.Relationship {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Relationship
	for _, r := range s.state.relationships {
		if r.Type == t {
			out = append(out, r)
		}
	}
	sortRelationships(out)
	return out
}

// OutgoingRelationships returns edges whose source is the element.
func (s *GraphStore) OutgoingRelationships(elementID string) []domain.Relationship {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Relationship
	for _, r := range s.state.relationships {
		if r.SourceID == elementID {
			out = append(out, r)
		}
	}
	sortRelationships(out)
	return out
}

// IncomingRelationships returns edges whose target is the element.
func (s *GraphStore) IncomingRelationships(elementID string) []domain.Relationship {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Relationship
	for _, r := range s.state.relationships {
		if r.TargetID == elementID {
			out = append(out, r)
		}
	}
	sortRelationships(out)
	return out
}

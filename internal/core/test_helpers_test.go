package core

import (
	"context"
	"testing"

	"archgraph/pkg/domain"
)

func capability(id, name string) domain.Element {
	return domain.Element{ID: id, Name: name, Type: domain.ElementCapability, Lifecycle: domain.StatusActive}
}

func application(id, name string) domain.Element {
	return domain.Element{ID: id, Name: name, Type: domain.ElementApplication, Lifecycle: domain.StatusActive}
}

func technology(id, name string) domain.Element {
	return domain.Element{ID: id, Name: name, Type: domain.ElementTechnology, Lifecycle: domain.StatusActive}
}

func supportedBy(id, sourceID, targetID string) domain.Relationship {
	return domain.Relationship{
		ID:       id,
		Type:     domain.RelationshipSupportedBy,
		SourceID: sourceID,
		TargetID: targetID,
	}
}

func dependsOn(id, sourceID, targetID string) domain.Relationship {
	return domain.Relationship{
		ID:       id,
		Type:     domain.RelationshipDependsOn,
		SourceID: sourceID,
		TargetID: targetID,
	}
}

// mustAddElement seeds one element or fails the test.
func mustAddElement(t *testing.T, store *GraphStore, e domain.Element) domain.Element {
	t.Helper()
	created, _, err := store.AddElement(context.Background(), e.Type, e)
	if err != nil {
		t.Fatalf("add element %s: %v", e.ID, err)
	}
	return created
}

// mustAddRelationship seeds one relationship or fails the test.
func mustAddRelationship(t *testing.T, store *GraphStore, r domain.Relationship) domain.Relationship {
	t.Helper()
	created, _, err := store.AddRelationship(context.Background(), r)
	if err != nil {
		t.Fatalf("add relationship %s: %v", r.ID, err)
	}
	return created
}

func newTestStore(t *testing.T) *GraphStore {
	t.Helper()
	return NewGraphStore(nil, domain.ModeStrict, nil)
}

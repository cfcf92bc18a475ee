package semantics

import (
	"testing"

	"archgraph/pkg/domain"
)

func TestDefaultTableCoversAllRelationshipTypes(t *testing.T) {
	table := DefaultTable()
	for _, rt := range domain.RelationshipTypes() {
		if !table.Knows(rt) {
			t.Fatalf("no rule for relationship type %s", rt)
		}
	}
}

func TestTableAllows(t *testing.T) {
	table := DefaultTable()
	cases := []struct {
		rel  domain.RelationshipType
		from domain.ElementType
		to   domain.ElementType
		want bool
	}{
		{domain.RelationshipSupportedBy, domain.ElementCapability, domain.ElementApplication, true},
		{domain.RelationshipSupportedBy, domain.ElementApplication, domain.ElementCapability, false},
		{domain.RelationshipUses, domain.ElementApplication, domain.ElementTechnology, true},
		{domain.RelationshipUses, domain.ElementTechnology, domain.ElementApplication, false},
		{domain.RelationshipDelivers, domain.ElementProgramme, domain.ElementCapability, true},
		{domain.RelationshipDelivers, domain.ElementCapability, domain.ElementProgramme, false},
	}
	for _, tc := range cases {
		if got := table.Allows(tc.rel, tc.from, tc.to); got != tc.want {
			t.Fatalf("Allows(%s, %s, %s) = %v, want %v", tc.rel, tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTablePairsTakePrecedence(t *testing.T) {
	table := DefaultTable()
	if !table.Allows(domain.RelationshipOwns, domain.ElementProgramme, domain.ElementApplication) {
		t.Fatalf("expected OWNS programme -> application to be allowed")
	}
	if table.Allows(domain.RelationshipOwns, domain.ElementProgramme, domain.ElementTechnology) {
		t.Fatalf("expected OWNS programme -> technology to be disallowed")
	}
}

func TestTableUnknownType(t *testing.T) {
	table := DefaultTable()
	if table.Allows("MADE_UP", domain.ElementCapability, domain.ElementApplication) {
		t.Fatalf("unknown relationship type must never be allowed")
	}
	if _, ok := table.Rule("MADE_UP"); ok {
		t.Fatalf("expected no rule for unknown type")
	}
}

// Package semantics holds the static relationship endpoint rules and the
// cycle detection utility. The table is pure lookup; it carries no store state.
package semantics

import (
	"archgraph/pkg/domain"
)

// TypePair is an explicit (source, target) combination permitted for a
// relationship type. When a rule lists pairs, they take precedence over the
// from/to sets.
type TypePair struct {
	From domain.ElementType
	To   domain.ElementType
}

// EndpointRule describes which element types may appear at either end of a
// relationship type.
type EndpointRule struct {
	From  map[domain.ElementType]struct{}
	To    map[domain.ElementType]struct{}
	Pairs []TypePair
}

// Allows reports whether the (from, to) combination satisfies the rule.
func (r EndpointRule) Allows(from, to domain.ElementType) bool {
	if len(r.Pairs) > 0 {
		for _, p := range r.Pairs {
			if p.From == from && p.To == to {
				return true
			}
		}
		return false
	}
	if _, ok := r.From[from]; !ok {
		return false
	}
	_, ok := r.To[to]
	return ok
}

// Table maps relationship types to their endpoint rules.
type Table struct {
	rules map[domain.RelationshipType]EndpointRule
}

// Rule returns the endpoint rule for the given relationship type.
func (t *Table) Rule(rt domain.RelationshipType) (EndpointRule, bool) {
	rule, ok := t.rules[rt]
	return rule, ok
}

// Allows reports whether the table permits a relationship of type rt from an
// element of type from to an element of type to. Unknown relationship types
// are never permitted.
func (t *Table) Allows(rt domain.RelationshipType, from, to domain.ElementType) bool {
	rule, ok := t.rules[rt]
	if !ok {
		return false
	}
	return rule.Allows(from, to)
}

// Knows reports whether the table has any rule for rt.
func (t *Table) Knows(rt domain.RelationshipType) bool {
	_, ok := t.rules[rt]
	return ok
}

func typeSet(types ...domain.ElementType) map[domain.ElementType]struct{} {
	out := make(map[domain.ElementType]struct{}, len(types))
	for _, t := range types {
		out[t] = struct{}{}
	}
	return out
}

// DefaultTable returns the built-in endpoint rules covering the closed
// relationship type set.
func DefaultTable() *Table {
	return &Table{rules: map[domain.RelationshipType]EndpointRule{
		domain.RelationshipSupportedBy: {
			From: typeSet(domain.ElementCapability, domain.ElementBusinessProcess),
			To:   typeSet(domain.ElementApplication, domain.ElementTechnology),
		},
		domain.RelationshipRealizedBy: {
			From: typeSet(domain.ElementCapability),
			To:   typeSet(domain.ElementBusinessProcess, domain.ElementApplication),
		},
		domain.RelationshipUses: {
			From: typeSet(domain.ElementApplication, domain.ElementBusinessProcess),
			To:   typeSet(domain.ElementApplication, domain.ElementTechnology),
		},
		domain.RelationshipDependsOn: {
			From: typeSet(domain.ElementApplication, domain.ElementTechnology),
			To:   typeSet(domain.ElementApplication, domain.ElementTechnology),
		},
		domain.RelationshipComprises: {
			From: typeSet(domain.ElementCapability, domain.ElementBusinessProcess),
			To:   typeSet(domain.ElementCapability, domain.ElementBusinessProcess),
		},
		domain.RelationshipDelivers: {
			From: typeSet(domain.ElementProgramme),
			To: typeSet(domain.ElementApplication, domain.ElementTechnology,
				domain.ElementCapability),
		},
		domain.RelationshipOwns: {
			Pairs: []TypePair{
				{From: domain.ElementProgramme, To: domain.ElementApplication},
				{From: domain.ElementProgramme, To: domain.ElementCapability},
			},
		},
	}}
}

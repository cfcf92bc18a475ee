package core

import (
	"context"
	"fmt"

	"archgraph/internal/semantics"
	"archgraph/pkg/domain"
)

// EndpointSemanticsRule blocks commits containing relationships whose type
// has no semantics rule or whose endpoint type pair the table disallows.
func EndpointSemanticsRule(table *semantics.Table) domain.Rule {
	return endpointSemanticsRule{table: table}
}

type endpointSemanticsRule struct {
	table *semantics.Table
}

func (endpointSemanticsRule) Name() string { return "endpoint_semantics" }

func (r endpointSemanticsRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	var result domain.Result
	for _, rel := range view.ListRelationships() {
		if !r.table.Knows(rel.Type) {
			result.Violations = append(result.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("no semantics rule for relationship type %q", rel.Type),
				Entity:   domain.EntityRelationship,
				EntityID: rel.ID,
			})
			continue
		}
		if !r.table.Allows(rel.Type, rel.SourceType, rel.TargetType) {
			result.Violations = append(result.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("%q does not allow %q -> %q", rel.Type, rel.SourceType, rel.TargetType),
				Entity:   domain.EntityRelationship,
				EntityID: rel.ID,
			})
		}
	}
	return result, nil
}

package core

import (
	"context"
	"fmt"

	"archgraph/pkg/domain"
)

// ReferentialIntegrityRule blocks commits that would leave a relationship
// pointing at a missing element or carrying an endpoint type that disagrees
// with the referenced element's actual type.
func ReferentialIntegrityRule() domain.Rule {
	return referentialIntegrityRule{}
}

type referentialIntegrityRule struct{}

func (referentialIntegrityRule) Name() string { return "referential_integrity" }

func (r referentialIntegrityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	var result domain.Result
	for _, rel := range view.ListRelationships() {
		source, ok := view.FindElement(rel.SourceID)
		if !ok {
			result.Violations = append(result.Violations, r.violation(rel.ID,
				fmt.Sprintf("source element %q does not exist", rel.SourceID)))
			continue
		}
		target, ok := view.FindElement(rel.TargetID)
		if !ok {
			result.Violations = append(result.Violations, r.violation(rel.ID,
				fmt.Sprintf("target element %q does not exist", rel.TargetID)))
			continue
		}
		if rel.SourceType != source.Type {
			result.Violations = append(result.Violations, r.violation(rel.ID,
				fmt.Sprintf("recorded source type %q but element %q is %q", rel.SourceType, rel.SourceID, source.Type)))
		}
		if rel.TargetType != target.Type {
			result.Violations = append(result.Violations, r.violation(rel.ID,
				fmt.Sprintf("recorded target type %q but element %q is %q", rel.TargetType, rel.TargetID, target.Type)))
		}
	}
	return result, nil
}

func (r referentialIntegrityRule) violation(relID, message string) domain.Violation {
	return domain.Violation{
		Rule:     r.Name(),
		Severity: domain.SeverityBlock,
		Message:  message,
		Entity:   domain.EntityRelationship,
		EntityID: relID,
	}
}

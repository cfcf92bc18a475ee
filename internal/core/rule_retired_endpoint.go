package core

import (
	"context"
	"fmt"

	"archgraph/pkg/domain"
)

// RetiredEndpointRule warns when an active relationship touches a retired
// element. Retired elements usually indicate a decommissioned system whose
// edges should be retired alongside it.
func RetiredEndpointRule() domain.Rule {
	return retiredEndpointRule{}
}

type retiredEndpointRule struct{}

func (retiredEndpointRule) Name() string { return "retired_endpoint" }

func (r retiredEndpointRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	var result domain.Result
	for _, rel := range view.ListRelationships() {
		if rel.Lifecycle != domain.StatusActive {
			continue
		}
		for _, endpointID := range []string{rel.SourceID, rel.TargetID} {
			element, ok := view.FindElement(endpointID)
			if !ok || element.Lifecycle != domain.StatusRetired {
				continue
			}
			result.Violations = append(result.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("active relationship references retired element %q", endpointID),
				Entity:   domain.EntityRelationship,
				EntityID: rel.ID,
			})
		}
	}
	return result, nil
}

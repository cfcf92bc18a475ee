package core

import (
	"context"

	"archgraph/internal/semantics"
	"archgraph/pkg/domain"
)

// Gate is the pre-commit validation policy check. Every durable write passes
// through it; no code path may mutate state around it. Structural rules
// (referential integrity, endpoint semantics) are always registered; the
// governance layer stacks its own policy rules on top via Register.
type Gate struct {
	engine *domain.RulesEngine
	table  *semantics.Table
}

// NewGate builds a gate over the supplied semantics table (nil means the
// built-in default table) with the structural rule set installed.
func NewGate(table *semantics.Table) *Gate {
	if table == nil {
		table = semantics.DefaultTable()
	}
	engine := domain.NewRulesEngine()
	engine.Register(ReferentialIntegrityRule())
	engine.Register(EndpointSemanticsRule(table))
	engine.Register(RetiredEndpointRule())
	return &Gate{engine: engine, table: table}
}

// Register adds a governance rule to the gate.
func (g *Gate) Register(rule domain.Rule) {
	g.engine.Register(rule)
}

// Semantics returns the endpoint rule table the gate validates against.
func (g *Gate) Semantics() *semantics.Table {
	return g.table
}

// ValidateOnSave evaluates every rule against the candidate state. In strict
// mode a blocking violation aborts the commit with RuleViolationError; in
// advisory mode all violations are downgraded to warnings and the commit
// proceeds. The returned result always carries the surfaced warnings.
func (g *Gate) ValidateOnSave(ctx context.Context, view domain.RuleView, changes []domain.Change, mode domain.ValidationMode) (domain.Result, error) {
	res, err := g.engine.Evaluate(ctx, view, changes)
	if err != nil {
		return domain.Result{}, err
	}
	if mode == domain.ModeAdvisory {
		return res.Advisory(), nil
	}
	if res.HasBlocking() {
		return res, domain.RuleViolationError{Result: res}
	}
	return res, nil
}

// ValidateRelationshipCreation is a dry run: it evaluates the gate as if the
// candidate relationship had been added to the supplied state, without
// committing anything.
func (g *Gate) ValidateRelationshipCreation(ctx context.Context, view domain.RuleView, candidate domain.Relationship, mode domain.ValidationMode) (domain.Result, error) {
	changes := []domain.Change{{Entity: domain.EntityRelationship, Action: domain.ActionCreate, After: candidate}}
	return g.ValidateOnSave(ctx, candidateView{RuleView: view, candidate: candidate}, changes, mode)
}

// candidateView overlays one uncommitted relationship on a state view so the
// structural rules can judge it.
type candidateView struct {
	domain.RuleView
	candidate domain.Relationship
}

func (v candidateView) ListRelationships() []domain.Relationship {
	return append(v.RuleView.ListRelationships(), v.candidate)
}

func (v candidateView) FindRelationship(id string) (domain.Relationship, bool) {
	if id == v.candidate.ID {
		return v.candidate, true
	}
	return v.RuleView.FindRelationship(id)
}

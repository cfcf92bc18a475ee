package domain

import (
	"context"
	"fmt"
	"testing"
)

type staticRule struct {
	name     string
	severity Severity
}

func (r staticRule) Name() string { return r.name }

func (r staticRule) Evaluate(context.Context, RuleView, []Change) (Result, error) {
	return Result{Violations: []Violation{{Rule: r.name, Severity: r.severity}}}, nil
}

type errorRule struct{}

func (errorRule) Name() string { return "error" }

func (errorRule) Evaluate(context.Context, RuleView, []Change) (Result, error) {
	return Result{}, fmt.Errorf("boom")
}

type emptyView struct{}

func (emptyView) ListElements() []Element                      { return nil }
func (emptyView) ListRelationships() []Relationship            { return nil }
func (emptyView) FindElement(string) (Element, bool)           { return Element{}, false }
func (emptyView) FindRelationship(string) (Relationship, bool) { return Relationship{}, false }

func TestResultMergeAndBlocking(t *testing.T) {
	var result Result
	result.Merge(Result{Violations: []Violation{{Rule: "warn", Severity: SeverityWarn}}})
	if result.HasBlocking() {
		t.Fatalf("expected no blocking violations")
	}
	result.Merge(Result{Violations: []Violation{{Rule: "block", Severity: SeverityBlock}}})
	if !result.HasBlocking() {
		t.Fatalf("expected blocking violation")
	}
	if err := (RuleViolationError{Result: result}); err.Error() == "" {
		t.Fatalf("expected error string")
	}
}

func TestResultMergeEmptyInput(t *testing.T) {
	original := Result{Violations: []Violation{{Rule: "existing", Severity: SeverityWarn}}}
	original.Merge(Result{})
	if len(original.Violations) != 1 || original.Violations[0].Rule != "existing" {
		t.Fatalf("expected original violations to remain, got %+v", original.Violations)
	}
}

func TestResultAdvisoryDowngradesBlocking(t *testing.T) {
	res := Result{Violations: []Violation{
		{Rule: "block", Severity: SeverityBlock},
		{Rule: "warn", Severity: SeverityWarn},
	}}
	advisory := res.Advisory()
	if advisory.HasBlocking() {
		t.Fatalf("advisory result must not block")
	}
	if len(advisory.Violations) != 2 {
		t.Fatalf("advisory must keep all violations, got %d", len(advisory.Violations))
	}
	if res.Violations[0].Severity != SeverityBlock {
		t.Fatalf("original result must be untouched")
	}
	if len(advisory.Warnings()) != 2 {
		t.Fatalf("expected two warnings, got %d", len(advisory.Warnings()))
	}
}

func TestRulesEngineEvaluate(t *testing.T) {
	engine := NewRulesEngine()
	engine.Register(staticRule{name: "warn", severity: SeverityWarn})
	engine.Register(staticRule{name: "block", severity: SeverityBlock})
	res, err := engine.Evaluate(context.Background(), emptyView{}, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 2 || !res.HasBlocking() {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestRulesEngineEvaluateError(t *testing.T) {
	engine := NewRulesEngine()
	engine.Register(errorRule{})
	if _, err := engine.Evaluate(context.Background(), emptyView{}, nil); err == nil {
		t.Fatalf("expected evaluation error")
	}
}

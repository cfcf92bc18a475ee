package core

import (
	"context"
	"strings"
	"testing"

	"archgraph/pkg/domain"
)

type namedRule struct {
	name     string
	severity domain.Severity
	message  string
}

func (r namedRule) Name() string { return r.name }

func (r namedRule) Evaluate(context.Context, domain.RuleView, []domain.Change) (domain.Result, error) {
	return domain.Result{Violations: []domain.Violation{{
		Rule: r.name, Severity: r.severity, Message: r.message,
	}}}, nil
}

func TestGateStrictBlocks(t *testing.T) {
	gate := NewGate(nil)
	gate.Register(namedRule{name: "policy", severity: domain.SeverityBlock, message: "capability lacks owner"})
	store := NewGraphStore(gate, domain.ModeStrict, nil)

	_, _, err := store.AddElement(context.Background(), domain.ElementCapability, capability("cap-1", "Billing"))
	if domain.CodeOf(err) != domain.CodeValidationBlocked {
		t.Fatalf("expected validation_blocked, got %v", err)
	}
	if !strings.Contains(err.Error(), "policy") {
		t.Fatalf("expected rule name in message, got %q", err.Error())
	}
	if len(store.ListElements()) != 0 {
		t.Fatalf("blocked commit must leave no state")
	}
	if store.ElementRevision() != 0 {
		t.Fatalf("blocked commit must not move the revision")
	}
}

func TestGateAdvisoryWarns(t *testing.T) {
	gate := NewGate(nil)
	gate.Register(namedRule{name: "policy", severity: domain.SeverityBlock, message: "capability lacks owner"})
	store := NewGraphStore(gate, domain.ModeAdvisory, nil)

	created, res, err := store.AddElement(context.Background(), domain.ElementCapability, capability("cap-1", "Billing"))
	if err != nil {
		t.Fatalf("advisory mode must commit: %v", err)
	}
	if created.ID != "cap-1" {
		t.Fatalf("unexpected element %+v", created)
	}
	if len(res.Warnings()) != 1 || res.Warnings()[0].Rule != "policy" {
		t.Fatalf("expected surfaced warning, got %+v", res)
	}
	if store.ElementRevision() != 1 {
		t.Fatalf("advisory commit must move the revision")
	}
}

func TestGateWarningsRideAlongStrictSuccess(t *testing.T) {
	gate := NewGate(nil)
	gate.Register(namedRule{name: "hygiene", severity: domain.SeverityWarn, message: "missing review cadence"})
	store := NewGraphStore(gate, domain.ModeStrict, nil)

	_, res, err := store.AddElement(context.Background(), domain.ElementCapability, capability("cap-1", "Billing"))
	if err != nil {
		t.Fatalf("warn-only violations must not block: %v", err)
	}
	if len(res.Warnings()) != 1 {
		t.Fatalf("expected warning alongside success, got %+v", res)
	}
}

func TestValidateRelationshipCreation(t *testing.T) {
	gate := NewGate(nil)
	store := newTestStore(t)
	mustAddElement(t, store, capability("cap-1", "Billing"))
	mustAddElement(t, store, application("app-1", "Ledger"))

	view := stateView{state: &store.state}
	candidate := supportedBy("rel-1", "cap-1", "app-1")
	candidate.SourceType = domain.ElementCapability
	candidate.TargetType = domain.ElementApplication

	res, err := gate.ValidateRelationshipCreation(context.Background(), view, candidate, domain.ModeStrict)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if res.HasBlocking() {
		t.Fatalf("unexpected violations %+v", res)
	}

	// Dry run must see the candidate: a reversed pair is rejected even though
	// nothing was committed.
	reversed := supportedBy("rel-2", "app-1", "cap-1")
	reversed.SourceType = domain.ElementApplication
	reversed.TargetType = domain.ElementCapability
	res, err = gate.ValidateRelationshipCreation(context.Background(), view, reversed, domain.ModeStrict)
	if domain.CodeOf(err) != domain.CodeValidationBlocked {
		t.Fatalf("expected validation_blocked, got %v", err)
	}
	if !res.HasBlocking() {
		t.Fatalf("expected blocking violation for reversed pair")
	}
	if len(store.GetAllRelationships()) != 0 {
		t.Fatalf("dry run must not commit")
	}
}

func TestRetiredEndpointRuleWarns(t *testing.T) {
	store := newTestStore(t)
	mustAddElement(t, store, capability("cap-1", "Billing"))
	mustAddElement(t, store, application("app-1", "Ledger"))
	mustAddRelationship(t, store, supportedBy("rel-1", "cap-1", "app-1"))

	_, res, err := store.UpdateElementLifecycle(context.Background(), "app-1", domain.StatusRetired, domain.AuditStamp{By: "architect"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	warnings := res.Warnings()
	if len(warnings) != 1 || warnings[0].Rule != "retired_endpoint" {
		t.Fatalf("expected retired_endpoint warning, got %+v", res)
	}
}

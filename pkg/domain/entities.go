// Package domain defines the architecture graph's core entities, value types,
// and the rule evaluation primitives used by the store's validation gate.
package domain

import "time"

// ElementType identifies the kind of architecture element stored in a collection.
type ElementType string

// Supported element type identifiers. Each type corresponds to one typed
// collection in the element store; all collections share a single id space.
const (
	// ElementCapability identifies a business capability.
	ElementCapability ElementType = "capability"
	// ElementBusinessProcess identifies an operational business process.
	ElementBusinessProcess ElementType = "business_process"
	// ElementApplication identifies a deployed or planned application.
	ElementApplication ElementType = "application"
	// ElementTechnology identifies a technology platform or component.
	ElementTechnology ElementType = "technology"
	// ElementProgramme identifies a change programme or initiative.
	ElementProgramme ElementType = "programme"
)

// ElementTypes returns the closed set of supported element types in stable order.
func ElementTypes() []ElementType {
	return []ElementType{
		ElementCapability,
		ElementBusinessProcess,
		ElementApplication,
		ElementTechnology,
		ElementProgramme,
	}
}

// Known reports whether t is a member of the closed element type set.
func (t ElementType) Known() bool {
	switch t {
	case ElementCapability, ElementBusinessProcess, ElementApplication, ElementTechnology, ElementProgramme:
		return true
	}
	return false
}

// RelationshipType identifies the kind of directed edge between two elements.
type RelationshipType string

// Supported relationship type identifiers.
const (
	RelationshipSupportedBy RelationshipType = "SUPPORTED_BY"
	RelationshipRealizedBy  RelationshipType = "REALIZED_BY"
	RelationshipUses        RelationshipType = "USES"
	RelationshipDependsOn   RelationshipType = "DEPENDS_ON"
	RelationshipComprises   RelationshipType = "COMPRISES"
	RelationshipDelivers    RelationshipType = "DELIVERS"
	RelationshipOwns        RelationshipType = "OWNS"
)

// RelationshipTypes returns the closed set of supported relationship types in
// stable order.
func RelationshipTypes() []RelationshipType {
	return []RelationshipType{
		RelationshipSupportedBy,
		RelationshipRealizedBy,
		RelationshipUses,
		RelationshipDependsOn,
		RelationshipComprises,
		RelationshipDelivers,
		RelationshipOwns,
	}
}

// Known reports whether t is a member of the closed relationship type set.
func (t RelationshipType) Known() bool {
	switch t {
	case RelationshipSupportedBy, RelationshipRealizedBy, RelationshipUses,
		RelationshipDependsOn, RelationshipComprises, RelationshipDelivers, RelationshipOwns:
		return true
	}
	return false
}

// LifecycleStatus represents the canonical element lifecycle states.
type LifecycleStatus string

// Canonical lifecycle statuses for elements and relationships.
const (
	StatusPlanned    LifecycleStatus = "planned"
	StatusActive     LifecycleStatus = "active"
	StatusDeprecated LifecycleStatus = "deprecated"
	StatusRetired    LifecycleStatus = "retired"
)

// Known reports whether s is a member of the closed lifecycle status set.
func (s LifecycleStatus) Known() bool {
	switch s {
	case StatusPlanned, StatusActive, StatusDeprecated, StatusRetired:
		return true
	}
	return false
}

// ApprovalStatus captures the governance approval state of an element.
type ApprovalStatus string

// Governance approval states.
const (
	ApprovalDraft    ApprovalStatus = "draft"
	ApprovalProposed ApprovalStatus = "proposed"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// AuditStamp records who performed a change and when.
type AuditStamp struct {
	At time.Time `json:"at"`
	By string    `json:"by"`
}

// Element represents a typed node of the architecture graph.
type Element struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Type          ElementType     `json:"element_type"`
	Layer         string          `json:"layer"`
	Lifecycle     LifecycleStatus `json:"lifecycle_status"`
	Owner         string          `json:"owner"`
	Approval      ApprovalStatus  `json:"approval_status"`
	ReviewCadence string          `json:"review_cadence"`
	CreatedAt     time.Time       `json:"created_at"`
	CreatedBy     string          `json:"created_by"`
	UpdatedAt     time.Time       `json:"updated_at"`
	UpdatedBy     string          `json:"updated_by"`
}

// Relationship represents a typed, directed edge from a source element to a
// target element. The recorded endpoint types must match the referenced
// elements' actual types at insertion time. Edges carry no implicit reverse.
type Relationship struct {
	ID         string           `json:"id"`
	Type       RelationshipType `json:"relationship_type"`
	SourceID   string           `json:"source_element_id"`
	SourceType ElementType      `json:"source_element_type"`
	TargetID   string           `json:"target_element_id"`
	TargetType ElementType      `json:"target_element_type"`
	Lifecycle  LifecycleStatus  `json:"lifecycle_status"`
	CreatedAt  time.Time        `json:"created_at"`
	CreatedBy  string           `json:"created_by"`
	UpdatedAt  time.Time        `json:"updated_at"`
	UpdatedBy  string           `json:"updated_by"`
}

// ViewDefinition is a declarative, persisted projection over the graph. It
// never embeds element or relationship payloads; the resolver recomputes the
// concrete node/edge set on demand.
type ViewDefinition struct {
	ID                       string             `json:"id"`
	Name                     string             `json:"name"`
	ViewType                 string             `json:"view_type"`
	AllowedElementTypes      []ElementType      `json:"allowed_element_types"`
	AllowedRelationshipTypes []RelationshipType `json:"allowed_relationship_types"`
	RootElementID            string             `json:"root_element_id,omitempty"`
	MaxDepth                 int                `json:"max_depth,omitempty"`
	ScopeType                string             `json:"scope_type,omitempty"`
	ScopeIDs                 []string           `json:"scope_ids,omitempty"`
	CreatedAt                time.Time          `json:"created_at"`
	CreatedBy                string             `json:"created_by"`
	UpdatedAt                time.Time          `json:"updated_at"`
	UpdatedBy                string             `json:"updated_by"`
}

// EntityKind identifies the kind of record referenced by a Change.
type EntityKind string

// Entity kinds captured in change records.
const (
	EntityElement      EntityKind = "element"
	EntityRelationship EntityKind = "relationship"
	EntityView         EntityKind = "view"
)

// Change describes a mutation applied to the graph during a committed write.
type Change struct {
	Entity EntityKind
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported mutation kinds captured for observers.
const (
	// ActionCreate indicates a record was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates a record was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	// ActionReplace indicates the whole store was swapped in a bulk import.
	ActionReplace Action = "replace"
)

// Severity captures validation rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and surfaced warnings.
const (
	// SeverityBlock blocks the commit in Strict mode.
	SeverityBlock Severity = "block"
	// SeverityWarn is surfaced as a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// ValidationMode selects gate enforcement behavior.
type ValidationMode string

// Gate enforcement levels.
const (
	// ModeAdvisory surfaces all violations as warnings; commits always proceed.
	ModeAdvisory ValidationMode = "advisory"
	// ModeStrict rejects commits carrying blocking violations.
	ModeStrict ValidationMode = "strict"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityKind
	EntityID string
}

// Result aggregates violations from the validation gate.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// Warnings returns the non-blocking violations.
func (r Result) Warnings() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity != SeverityBlock {
			out = append(out, v)
		}
	}
	return out
}

// Advisory returns a copy of the result with blocking violations downgraded to
// warnings, preserving rule names and messages.
func (r Result) Advisory() Result {
	if len(r.Violations) == 0 {
		return Result{}
	}
	out := Result{Violations: make([]Violation, len(r.Violations))}
	copy(out.Violations, r.Violations)
	for i := range out.Violations {
		if out.Violations[i].Severity == SeverityBlock {
			out.Violations[i].Severity = SeverityWarn
		}
	}
	return out
}

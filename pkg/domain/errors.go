package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is a machine-stable discriminator for expected domain failures.
type ErrorCode string

// Domain failure codes returned across the store boundary.
const (
	// CodeDuplicateID indicates the id already exists in the target id space.
	CodeDuplicateID ErrorCode = "duplicate_id"
	// CodeNotFound indicates the referenced record does not exist.
	CodeNotFound ErrorCode = "not_found"
	// CodeInvalidCollection indicates an element offered to the wrong collection.
	CodeInvalidCollection ErrorCode = "invalid_collection"
	// CodeUnknownEndpoint indicates a relationship endpoint id with no element.
	CodeUnknownEndpoint ErrorCode = "unknown_endpoint"
	// CodeEndpointTypeMismatch indicates a declared endpoint type that differs
	// from the referenced element's actual type.
	CodeEndpointTypeMismatch ErrorCode = "endpoint_type_mismatch"
	// CodeInvalidEndpointPair indicates a type pair the semantics table rejects.
	CodeInvalidEndpointPair ErrorCode = "invalid_endpoint_pair"
	// CodeInvalidView indicates a view definition that failed creation checks.
	CodeInvalidView ErrorCode = "invalid_view"
	// CodeInvalidLifecycle indicates a lifecycle status outside the closed set.
	CodeInvalidLifecycle ErrorCode = "invalid_lifecycle"
	// CodeValidationBlocked indicates a strict-mode gate rejection.
	CodeValidationBlocked ErrorCode = "validation_blocked"
)

// Error is the typed failure value returned for expected domain violations.
// Collaborators branch on Code; Message is for humans.
type Error struct {
	Code     ErrorCode
	Message  string
	EntityID string
	Field    string
}

func (e *Error) Error() string {
	if e.EntityID != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.EntityID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds a typed domain error.
func NewError(code ErrorCode, entityID, format string, args ...any) *Error {
	return &Error{Code: code, EntityID: entityID, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the domain error code from err, or "" when err is not a
// domain error. Strict-mode gate rejections report CodeValidationBlocked.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	var rve RuleViolationError
	if errors.As(err, &rve) {
		return CodeValidationBlocked
	}
	return ""
}

// RuleViolationError is returned when a strict-mode commit is blocked by the
// validation gate. The full gate result, including warnings, rides along.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	for _, v := range e.Result.Violations {
		if v.Severity == SeverityBlock {
			return fmt.Sprintf("commit blocked by rule %s: %s", v.Rule, v.Message)
		}
	}
	return "commit blocked by validation rules"
}

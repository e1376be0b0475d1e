package domain

import (
	"errors"
	"fmt"
)

// ValidationError is a business-rule violation: insufficient stock, a
// restricted client, a duplicate active loan. Never retried automatically.
type ValidationError struct {
	Rule    string // machine-readable rule identifier, e.g. "client_restricted"
	Message string
	Value   any // the offending value, when one exists
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("%s: %s (got %v)", e.Rule, e.Message, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Rule, e.Message)
}

func NewValidationError(rule, message string, value any) *ValidationError {
	return &ValidationError{Rule: rule, Message: message, Value: value}
}

// NotFoundError reports a missing referenced entity.
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

func NewNotFoundError(entity string, id any) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// StateError reports an illegal lifecycle transition. The caller must
// re-fetch current state before retrying.
type StateError struct {
	Entity  string
	ID      any
	From    string
	Message string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s %v in state %s: %s", e.Entity, e.ID, e.From, e.Message)
}

func NewStateError(entity string, id any, from, message string) *StateError {
	return &StateError{Entity: entity, ID: id, From: from, Message: message}
}

// ConsistencyError reports broken stock bookkeeping: a ledger entry whose
// recorded figures contradict its own delta, or an aggregate count that
// diverges from what the ledger reproduces. It is surfaced for
// administrative remediation and never auto-corrected: this layer cannot
// know which side is authoritative.
type ConsistencyError struct {
	ToolID   int32
	Expected int32
	Actual   int32
	Detail   string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("tool %d stock consistency violated (expected %d, recorded %d): %s",
		e.ToolID, e.Expected, e.Actual, e.Detail)
}

func NewConsistencyError(toolID, expected, actual int32, detail string) *ConsistencyError {
	return &ConsistencyError{ToolID: toolID, Expected: expected, Actual: actual, Detail: detail}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsStateError(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}

func IsConsistency(err error) bool {
	var ce *ConsistencyError
	return errors.As(err, &ce)
}

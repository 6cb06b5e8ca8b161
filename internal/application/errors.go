package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrInvalidID         = errors.New("invalid ID")
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrCommitPending     = errors.New("a commit is already in flight")
	ErrMalformedSnapshot = errors.New("malformed relation snapshot")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RelationError represents a failure to read or reconcile one relation
type RelationError struct {
	Relation string
	Reason   string
	Err      error
}

func (e *RelationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("relation %s: %s: %v", e.Relation, e.Reason, e.Err)
	}
	return fmt.Sprintf("relation %s: %s", e.Relation, e.Reason)
}

func (e *RelationError) Unwrap() error {
	return e.Err
}

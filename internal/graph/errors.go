package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is reported when mutating or renaming a nonexistent id.
	ErrNotFound = errors.New("not found")
	// ErrIDCollision is reported when creating or renaming onto a used id.
	ErrIDCollision = errors.New("id collision")
	// ErrMissingField is reported when a required payload field is empty.
	ErrMissingField = errors.New("missing required field")
	// ErrTransactionClosed is reported when mutating under a transaction that
	// is not open.
	ErrTransactionClosed = errors.New("transaction is not open")
)

// ValidationError describes a rejected store operation. It is returned to
// callers as a value and never escapes as a panic.
type ValidationError struct {
	Op  string
	ID  string
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.ID, e.Err)
}

// Unwrap exposes the underlying sentinel.
func (e *ValidationError) Unwrap() error { return e.Err }

// NewValidationError is a small constructor used by store implementations.
func NewValidationError(op, id string, err error) *ValidationError {
	return &ValidationError{Op: op, ID: id, Err: err}
}

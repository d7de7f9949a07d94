package bridge

import (
	"errors"
	"fmt"
)

// ErrMaxRetries is wrapped by the error returned when every attempt ended
// in a write conflict.
var ErrMaxRetries = errors.New("max retries reached")

// ConflictError signals a retryable write-write conflict.
type ConflictError struct {
	Err error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("write conflict: %v", e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// ConnectivityError signals that the database could not be reached. It is
// never retried.
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("database unreachable: %v", e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// IsConflict reports whether err carries a *ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsConnectivity reports whether err carries a *ConnectivityError.
func IsConnectivity(err error) bool {
	var c *ConnectivityError
	return errors.As(err, &c)
}

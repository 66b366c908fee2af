package lesson

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a lesson or task does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means the caller's session is no longer valid or
	// lacks the role for the operation. Engines abort the current
	// operation without recording anything.
	ErrUnauthorized = errors.New("unauthorized")
)

// LoadError reports a failed fetch that leaves nothing to show.
type LoadError struct {
	Op  string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Op, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("project not found")
	// ErrConcurrencyConflict means the gallery changed between load and write
	// more often than the retry budget allows. The caller may retry.
	ErrConcurrencyConflict = errors.New("project was modified concurrently")
	ErrInvalidInput        = errors.New("invalid input")
)

// PersistenceError wraps a storage failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

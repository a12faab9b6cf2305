package collection

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyNotFound is returned when no row's decoded key equals the requested key.
	// It is the only expected failure; test for it with errors.Is.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvariantViolation means a mutation touched a row count other than one.
	// The index is corrupt; callers must stop rather than retry.
	ErrInvariantViolation = errors.New("invariant violation")
)

// KeyNotFoundError carries the key that was looked up
type KeyNotFoundError struct {
	Table string
	Key   any
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("%s: key not found: %v", e.Table, e.Key)
}

func (e *KeyNotFoundError) Is(target error) bool {
	return target == ErrKeyNotFound
}

// StoreError wraps a failure of the underlying store
type StoreError struct {
	Op    string
	Table string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: store error: %v", e.Op, e.Table, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// InvariantError reports how many rows a single-row mutation touched
type InvariantError struct {
	Op       string
	Table    string
	RowID    int64
	Affected int64
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s %s: row count %d, expected 1 (row id %d)", e.Op, e.Table, e.Affected, e.RowID)
}

func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariantViolation
}

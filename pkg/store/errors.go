package store

import (
	"errors"
	"fmt"
)

// StoreError kinds. Machine-readable; the API layer maps them to HTTP codes.
const (
	KindConflict = "conflict"
	KindNotFound = "not_found"
	KindIO       = "io"
)

// StoreError wraps a persistence failure with a machine-readable subkind.
type StoreError struct {
	Kind string
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("store: %s: %s", e.Op, e.Kind)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ErrNotFound is matched by errors.Is for any not_found StoreError.
var ErrNotFound = errors.New("not found")

func (e *StoreError) Is(target error) bool {
	return target == ErrNotFound && e.Kind == KindNotFound
}

func notFound(op string) error {
	return &StoreError{Kind: KindNotFound, Op: op}
}

func ioErr(op string, err error) error {
	return &StoreError{Kind: KindIO, Op: op, Err: err}
}

// IsNotFound reports whether err is a not_found store error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

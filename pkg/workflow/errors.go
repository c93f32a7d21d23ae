package workflow

import (
	"errors"
	"fmt"
)

// ErrNotReady is returned when a transition's preconditions are not met
// (e.g. finalizing without audio).
var ErrNotReady = errors.New("workflow is not ready for this transition")

// ValidationError wraps field-specific input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

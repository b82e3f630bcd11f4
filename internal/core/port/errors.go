package port

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a campaign, rule, schedule entry or
// pending action does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidState is returned when resolving an action that has already
// been resolved. Callers must re-fetch state before retrying.
var ErrInvalidState = errors.New("invalid state")

// ValidationError reports malformed rule, schedule or metrics input.
// It is surfaced to the caller immediately and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError for the given field.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

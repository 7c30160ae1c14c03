package critique

import (
	"errors"
	"fmt"
)

// ValidationError rejects a request before any external call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ExtractionFailure is a value, not an error: call sites handle it as data and
// fall back to showing the raw completion text. It is never raised.
type ExtractionFailure struct {
	Raw    string
	Reason string
}

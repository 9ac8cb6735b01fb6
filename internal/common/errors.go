// Package common defines shared constants and sentinel errors used across
// the planboard store layer. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrorConflict    = errors.New("already exists")
	ErrorCorruptFile = errors.New("corrupt backing file")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Validation errors. Concrete failures are reported as *ValidationError,
	// which unwraps to ErrorValidation.
	ErrorValidation = errors.New("validation failed")
)

// ValidationError names the input field and the rule it violated.
type ValidationError struct {
	Field   string
	Rule    string
	Message string
}

// NewValidationError builds a ValidationError for field violating rule.
func NewValidationError(field, rule, message string) *ValidationError {
	return &ValidationError{Field: field, Rule: rule, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrorValidation, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrorValidation, e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrorValidation) match.
func (e *ValidationError) Unwrap() error {
	return ErrorValidation
}

// ValidationRule extracts the violated rule name from err, if any.
func ValidationRule(err error) (string, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Rule, true
	}
	return "", false
}

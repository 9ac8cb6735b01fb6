package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_IsAndRule(t *testing.T) {
	err := fmt.Errorf("create user: %w", NewValidationError("username", "too_short", "must be at least 3 characters"))

	assert.True(t, errors.Is(err, ErrorValidation))
	assert.False(t, errors.Is(err, ErrorConflict))

	rule, ok := ValidationRule(err)
	assert.True(t, ok)
	assert.Equal(t, "too_short", rule)
	assert.Contains(t, err.Error(), "username")
}

func TestValidationRule_NotAValidationError(t *testing.T) {
	_, ok := ValidationRule(ErrorNotFound)
	assert.False(t, ok)
}

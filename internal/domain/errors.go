package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("invalid input")
	ErrMessageNotFound = errors.New("message not found")
	ErrNoMessages      = errors.New("no messages stored")
	ErrConnection      = errors.New("could not connect to the database")
	ErrStore           = errors.New("store error")
)

// ValidationError reports a violated input constraint
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is lets callers match any validation failure with errors.Is(err, ErrValidation)
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

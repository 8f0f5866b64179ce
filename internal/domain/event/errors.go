package event

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Event domain errors
var (
	ErrEventNotFound = errors.New("event not found")
	ErrValidation    = errors.New("validation failed")
	ErrEventLocked   = errors.New("event is being modified by another request")
)

// Violation is a single failed constraint on one field.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every violation found in one input.
type ValidationError struct {
	Violations []Violation
}

// NewValidationError builds a ValidationError from a list of violations.
func NewValidationError(violations ...Violation) *ValidationError {
	return &ValidationError{Violations: violations}
}

// Add appends a violation.
func (e *ValidationError) Add(field, message string) {
	e.Violations = append(e.Violations, Violation{Field: field, Message: message})
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Field + ": " + v.Message
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ValidateID rejects ids that cannot belong to any stored event.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	return nil
}

func tooLong(max int) string {
	return fmt.Sprintf("must not exceed %d characters", max)
}

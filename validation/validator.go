package validation

import (
	"fmt"
	"strings"

	"github.com/kbukum/rex/errors"
)

// Validator collects validation errors.
type Validator struct {
	errors []FieldError
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{
		errors: make([]FieldError, 0),
	}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns an AppError listing every field error, or nil.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}

	messages := make([]string, len(v.errors))
	for i, e := range v.errors {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}

	return errors.Validation(strings.Join(messages, "; ")).
		WithDetail("fields", v.errors)
}

// Required checks if a string is non-empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// UnitID checks that value is a usable unit id.
func (v *Validator) UnitID(field, value string) *Validator {
	if value == "" {
		v.AddError(field, "is required")
		return v
	}
	if !unitIDPattern.MatchString(value) {
		v.AddError(field, "is not a valid id")
	}
	return v
}

// Unique checks that value was not seen before in seen, and records it.
func (v *Validator) Unique(field, value string, seen map[string]bool) *Validator {
	if value == "" {
		return v
	}
	if seen[value] {
		v.AddError(field, fmt.Sprintf("duplicates %q", value))
		return v
	}
	seen[value] = true
	return v
}

// Custom applies a custom validation condition.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}

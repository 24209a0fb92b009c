package models

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError is a single validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (v ValidationError) Error() string {
	if v.Field == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidationErrors aggregates validation failures so a caller sees every
// problem at once instead of the first.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// AddMessage records a failure for a field.
func (v *ValidationErrors) AddMessage(field, message string) {
	if message == "" {
		return
	}
	v.Errors = append(v.Errors, ValidationError{Field: field, Message: message})
}

// Add records an error for a field, flattening nested ValidationErrors.
func (v *ValidationErrors) Add(field string, err error) {
	if err == nil {
		return
	}
	var nested *ValidationErrors
	if errors.As(err, &nested) {
		for _, sub := range nested.Errors {
			v.Errors = append(v.Errors, ValidationError{
				Field:   joinField(field, sub.Field),
				Message: sub.Message,
				Cause:   sub.Cause,
			})
		}
		return
	}
	v.Errors = append(v.Errors, ValidationError{Field: field, Message: err.Error(), Cause: err})
}

// Err returns nil when no failures were recorded.
func (v *ValidationErrors) Err() error {
	if v == nil || len(v.Errors) == 0 {
		return nil
	}
	return v
}

func (v *ValidationErrors) Error() string {
	if v == nil || len(v.Errors) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "; ")
}

// Is lets errors.Is match causes recorded inside the aggregate.
func (v *ValidationErrors) Is(target error) bool {
	if v == nil {
		return false
	}
	for _, err := range v.Errors {
		if err.Cause != nil && errors.Is(err.Cause, target) {
			return true
		}
	}
	return false
}

func joinField(prefix, field string) string {
	switch {
	case prefix == "":
		return field
	case field == "":
		return prefix
	default:
		return prefix + "." + field
	}
}

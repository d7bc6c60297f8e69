package application

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrInUse is returned when a delete is rejected because appointments
	// still reference the record.
	ErrInUse = errors.New("application: record is referenced by appointments")
)

// ValidationError reports the first input field that failed validation.
// Validation is sequential: the services surface one failure at a time
// rather than aggregating every violation.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("validation failed: %s: %s", v.Field, v.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError reports a time overlap between a candidate appointment and
// an existing one on the same date.
type ConflictError struct {
	Conflicting Appointment
}

// Error implements the error interface.
func (c *ConflictError) Error() string {
	if c == nil {
		return ""
	}
	if c.Conflicting.EndTime != nil {
		return fmt.Sprintf("appointment overlaps existing %s appointment from %s to %s",
			c.Conflicting.Type, c.Conflicting.StartTime, *c.Conflicting.EndTime)
	}
	return fmt.Sprintf("appointment overlaps existing %s appointment starting at %s",
		c.Conflicting.Type, c.Conflicting.StartTime)
}

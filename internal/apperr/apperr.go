// Package apperr defines the error kinds every operation reports through:
// validation failures are recoverable and never leave partial state behind,
// database errors mean a table file is missing, unreadable, or inconsistent.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports bad input shape, a duplicate key, or a
// business-rule violation. The operation that returns it performed no write.
type ValidationError struct {
	Message string
	// Fields lists the missing required fields, when that is the cause.
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
	}
	return e.Message
}

// NewValidation builds a ValidationError with a formatted message.
func NewValidation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NewMissingFields builds a ValidationError naming every absent field.
func NewMissingFields(fields ...string) error {
	return &ValidationError{Message: "missing required fields", Fields: fields}
}

// DatabaseError reports a table file problem or an inconsistency between
// tables (e.g. a return with no matching active loan). It fails the current
// operation without crashing the process.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// NewDatabase wraps err with the failing operation's name.
func NewDatabase(op string, err error) error {
	return &DatabaseError{Op: op, Err: err}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsDatabase reports whether err is (or wraps) a DatabaseError.
func IsDatabase(err error) bool {
	var d *DatabaseError
	return errors.As(err, &d)
}

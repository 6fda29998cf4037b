package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrIssueNotFound      = errors.New("issue not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrEventFull          = errors.New("event is full")
	ErrRegistrationClosed = errors.New("event does not take volunteer registrations")
	ErrDuplicateID        = errors.New("duplicate id")
	ErrClosed             = errors.New("store is closed")
)

// ValidationError lists the rejected input fields and why.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+e.Fields[name])
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func invalidField(field, reason string) error {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

// fromValidator converts validator output into a ValidationError keyed by the
// json name of each field.
func fromValidator(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = reason(fe)
	}
	return &ValidationError{Fields: fields}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "latitude":
		return "must be between -90 and 90"
	case "longitude":
		return "must be between -180 and 180"
	case "gte":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "must be a date formatted " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}

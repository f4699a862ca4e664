package form

import (
	"errors"
	"fmt"
	"sort"
)

// Kinds of validation failure.  A *ValidationError wraps exactly one of
// these, so callers can test the failure with errors.Is.
var (
	ErrRequired          = errors.New("required")
	ErrInvalidPrimaryKey = errors.New("invalid primary key")
	ErrInvalidChoice     = errors.New("invalid choice")
	ErrConsistency       = errors.New("inconsistent with related field")
	ErrMalformedValue    = errors.New("malformed value")
)

// ErrNotFound is returned by an Enumerable when no record has the requested
// identifier.
var ErrNotFound = errors.New("record does not exist")

const (
	msgRequired          = "This field is required."
	msgList              = "Enter a list of values."
	msgInvalidChoice     = "Select a valid choice. %s is not one of the available choices."
	msgInvalidPrimaryKey = `"%s" is not a valid value for a primary key.`
	msgConsistency       = "Value does not match %s value."
)

// ValidationError is a field-level validation failure.  The Message is meant
// to be shown to the user next to the field.
type ValidationError struct {
	// Kind is one of the Err* sentinels of this package.
	Kind error
	// Field is the name of the form field that failed.
	Field string
	// Value is the offending submitted value, if any.
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// Required returns a required-field failure for field if value is empty.
func Required(field, value string) error {
	if value == "" {
		return requiredError(field)
	}
	return nil
}

func requiredError(field string) *ValidationError {
	return &ValidationError{Kind: ErrRequired, Field: field, Message: msgRequired}
}

func listError(field string) *ValidationError {
	return &ValidationError{Kind: ErrMalformedValue, Field: field, Message: msgList}
}

func invalidChoiceError(field, value string) *ValidationError {
	return &ValidationError{
		Kind:    ErrInvalidChoice,
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf(msgInvalidChoice, value),
	}
}

func invalidPrimaryKeyError(field, value string) *ValidationError {
	return &ValidationError{
		Kind:    ErrInvalidPrimaryKey,
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf(msgInvalidPrimaryKey, value),
	}
}

func consistencyError(field, value, related string) *ValidationError {
	return &ValidationError{
		Kind:    ErrConsistency,
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf(msgConsistency, related),
	}
}

// InvalidIDError is returned by an Enumerable when an identifier can't be
// parsed or compared against the identifier field.
type InvalidIDError struct {
	ID  string
	Err error
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid identifier %q: %v", e.ID, e.Err)
}

func (e *InvalidIDError) Unwrap() error {
	return e.Err
}

// Kind returns a short name for the kind of validation failure err
// represents, or "other" if it is not a validation failure.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrRequired):
		return "required"
	case errors.Is(err, ErrInvalidPrimaryKey):
		return "invalid_pk_value"
	case errors.Is(err, ErrInvalidChoice):
		return "invalid_choice"
	case errors.Is(err, ErrConsistency):
		return "consistency"
	case errors.Is(err, ErrMalformedValue):
		return "list"
	}
	return "other"
}

// Errors collects the validation messages of a form, keyed by field name.
type Errors map[string][]string

// Add records err for the named field.
func (e Errors) Add(field string, err error) {
	e[field] = append(e[field], err.Error())
}

// Fields returns the names of the fields with errors in sorted order.
func (e Errors) Fields() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownEntityType    = errors.New("unknown entity type")
	ErrUnauthenticated      = errors.New("authentication required")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrCoercion             = errors.New("invalid field value")
	ErrUnknownField         = errors.New("unknown field")
	ErrInvalidIdentifier    = errors.New("invalid identifier")
	ErrInvalidEntityType    = errors.New("invalid entity type definition")
	ErrUnknownOperation     = errors.New("unknown operation")
)

// FieldError ties a validation or coercion failure to the label of the field
// that caused it.
type FieldError struct {
	Err   error
	Field FieldName
	Label Label
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Label)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func NewMissingRequiredField(field FieldDefinition) error {
	return &FieldError{Err: ErrMissingRequiredField, Field: field.Name, Label: field.Label}
}

func NewCoercionError(field FieldDefinition) error {
	return &FieldError{Err: ErrCoercion, Field: field.Name, Label: field.Label}
}

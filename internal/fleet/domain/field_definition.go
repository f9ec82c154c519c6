package domain

import "fmt"

type FieldDefinition struct {
	Name       FieldName
	Label      Label
	Type       FieldType
	IsRequired bool
}

type FieldType string

const (
	FieldTypeText    FieldType = "text"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
)

// ParseFieldType accepts the configuration spelling of a field type. "string"
// is an alias of text.
func ParseFieldType(value string) (FieldType, error) {
	switch value {
	case "text", "string":
		return FieldTypeText, nil
	case "number":
		return FieldTypeNumber, nil
	case "boolean":
		return FieldTypeBoolean, nil
	default:
		return "", fmt.Errorf("%w: unsupported field type %q", ErrInvalidEntityType, value)
	}
}

// NewFieldDefinition resolves the required flag: a field is required unless it
// is explicitly marked as not required.
func NewFieldDefinition(name, label string, fieldType FieldType, required *bool) FieldDefinition {
	return FieldDefinition{
		Name:       FieldName(name),
		Label:      Label(label),
		Type:       fieldType,
		IsRequired: required == nil || *required,
	}
}

func IdentifierDefinition() FieldDefinition {
	return FieldDefinition{
		Name:       IdentifierField,
		Label:      IdentifierLabel,
		Type:       FieldTypeNumber,
		IsRequired: true,
	}
}

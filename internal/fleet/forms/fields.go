package forms

import "dronefleet/internal/fleet/domain"

type InputKind string

const (
	InputText     InputKind = "text"
	InputNumeric  InputKind = "numeric"
	InputCheckbox InputKind = "checkbox"
)

type DisplayField struct {
	Name      domain.FieldName
	Label     domain.Label
	Type      domain.FieldType
	Mandatory bool
	Input     InputKind
}

// DeriveFields computes the form of an operation. Create follows the
// declared required flags; update leads with a mandatory identifier and keeps
// every entity field optional; find keeps every field optional. Delete only
// takes an identifier, so it has no entity fields.
func DeriveFields(entityType domain.EntityType, op domain.Operation) []DisplayField {
	switch op {
	case domain.OperationNone, domain.OperationDelete:
		return []DisplayField{}
	}

	fields := make([]DisplayField, 0, len(entityType.Fields)+1)
	if op == domain.OperationUpdate {
		fields = append(fields, displayField(domain.IdentifierDefinition(), true))
	}
	for _, f := range entityType.Fields {
		mandatory := op == domain.OperationCreate && f.IsRequired
		fields = append(fields, displayField(f, mandatory))
	}
	return fields
}

func displayField(f domain.FieldDefinition, mandatory bool) DisplayField {
	return DisplayField{
		Name:      f.Name,
		Label:     f.Label,
		Type:      f.Type,
		Mandatory: mandatory,
		Input:     inputKind(f.Type),
	}
}

func inputKind(t domain.FieldType) InputKind {
	switch t {
	case domain.FieldTypeBoolean:
		return InputCheckbox
	case domain.FieldTypeNumber:
		return InputNumeric
	default:
		return InputText
	}
}

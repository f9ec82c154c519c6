package forms

import (
	"strings"

	"dronefleet/internal/fleet/domain"
)

// Validate checks mandatory input before anything leaves the process. It
// reports the first missing field only.
func Validate(entityType domain.EntityType, op domain.Operation, values Values) error {
	switch {
	case op == domain.OperationCreate:
		for _, f := range entityType.Fields {
			if f.IsRequired && isBlank(values[f.Name]) {
				return domain.NewMissingRequiredField(f)
			}
		}
	case op.TakesIdentifier():
		if isBlank(values[domain.IdentifierField]) {
			return domain.NewMissingRequiredField(domain.IdentifierDefinition())
		}
	}
	return nil
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case bool:
		return !v
	default:
		return false
	}
}

package forms

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"dronefleet/internal/fleet/domain"
)

// Coerce converts raw input into wire values: numbers become float64 (the
// identifier becomes int), booleans follow IsTruthy and text stays text.
// Blank input is treated as unset and dropped. Coerce is idempotent.
func Coerce(entityType domain.EntityType, values Values) (Values, error) {
	coerced := make(Values, len(values))
	for name, raw := range values {
		field, ok := entityType.Field(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no field %q", domain.ErrUnknownField, entityType.Key, name)
		}
		if raw == nil {
			continue
		}
		if s, isString := raw.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}

		value, err := coerceValue(field, raw)
		if err != nil {
			return nil, err
		}
		coerced[name] = value
	}
	return coerced, nil
}

func coerceValue(field domain.FieldDefinition, raw any) (any, error) {
	if field.Name == domain.IdentifierField {
		return coerceIdentifier(field, raw)
	}
	switch field.Type {
	case domain.FieldTypeNumber:
		return coerceNumber(field, raw)
	case domain.FieldTypeBoolean:
		return IsTruthy(raw), nil
	default:
		if s, ok := raw.(string); ok {
			return s, nil
		}
		return fmt.Sprint(raw), nil
	}
}

func coerceNumber(field domain.FieldDefinition, raw any) (float64, error) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, domain.NewCoercionError(field)
		}
		f = parsed
	default:
		return 0, domain.NewCoercionError(field)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, domain.NewCoercionError(field)
	}
	return f, nil
}

func coerceIdentifier(field domain.FieldDefinition, raw any) (int, error) {
	if i, ok := raw.(int); ok {
		return i, nil
	}
	f, err := coerceNumber(field, raw)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, domain.NewCoercionError(field)
	}
	return int(f), nil
}

// Identifier extracts the coerced identifier.
func Identifier(coerced Values) (domain.ID, error) {
	id, ok := coerced[domain.IdentifierField].(int)
	if !ok {
		return 0, fmt.Errorf("%w: no identifier in form", domain.ErrInvalidIdentifier)
	}
	return domain.ID(id), nil
}

// RequestBody is the JSON body of a create or update request. The identifier
// travels in the URL and is never part of the body.
func RequestBody(coerced Values) map[string]any {
	body := make(map[string]any, len(coerced))
	for name, value := range coerced {
		if name == domain.IdentifierField {
			continue
		}
		body[name.String()] = value
	}
	return body
}

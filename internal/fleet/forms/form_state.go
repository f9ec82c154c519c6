package forms

import (
	"fmt"
	"maps"
	"slices"

	"dronefleet/internal/fleet/domain"
)

// Values maps field names to raw form input. A value is one of string,
// float64, int or bool.
type Values map[domain.FieldName]any

// FormState is the in-progress input of one management session. Only fields
// declared by its entity type, plus the identifier, can be set.
type FormState struct {
	entityType domain.EntityType
	values     Values
}

func NewFormState(entityType domain.EntityType) *FormState {
	return &FormState{
		entityType: entityType,
		values:     make(Values),
	}
}

func (s *FormState) EntityType() domain.EntityType {
	return s.entityType
}

func (s *FormState) Set(name domain.FieldName, value any) error {
	if _, ok := s.entityType.Field(name); !ok {
		return fmt.Errorf("%w: %s has no field %q", domain.ErrUnknownField, s.entityType.Key, name)
	}
	switch value.(type) {
	case string, float64, int, bool:
	default:
		return fmt.Errorf("%w: unsupported value %T for %s", domain.ErrCoercion, value, name)
	}
	s.values[name] = value
	return nil
}

// SetAll applies raw text input, stopping at the first rejected field.
func (s *FormState) SetAll(input map[string]string) error {
	for _, name := range slices.Sorted(maps.Keys(input)) {
		if err := s.Set(domain.FieldName(name), input[name]); err != nil {
			return err
		}
	}
	return nil
}

func (s *FormState) Get(name domain.FieldName) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

func (s *FormState) Delete(name domain.FieldName) {
	delete(s.values, name)
}

// Checked is the checkbox state of a boolean field; it has no unset state.
func (s *FormState) Checked(name domain.FieldName) bool {
	return IsTruthy(s.values[name])
}

func (s *FormState) Text(name domain.FieldName) string {
	v, ok := s.values[name]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func (s *FormState) Reset() {
	clear(s.values)
}

func (s *FormState) Len() int {
	return len(s.values)
}

func (s *FormState) Values() Values {
	return maps.Clone(s.values)
}

// IsTruthy implements the boolean acceptance rule: the boolean true and the
// string "true" are true, anything else is false.
func IsTruthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}

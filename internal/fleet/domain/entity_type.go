package domain

import (
	"fmt"
	"strings"
)

type EntityType struct {
	Key     EntityKey
	APIPath string
	Fields  []FieldDefinition
}

// Field returns the declared field with the given name. The identifier is
// resolvable even though it is never declared.
func (et EntityType) Field(name FieldName) (FieldDefinition, bool) {
	if name == IdentifierField {
		return IdentifierDefinition(), true
	}
	for _, f := range et.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// Singular is the display name of one entity of this type ("Drones" -> "Drone").
func (et EntityType) Singular() string {
	return strings.TrimSuffix(et.Key.String(), "s")
}

func (et EntityType) validate() error {
	if et.Key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidEntityType)
	}
	if strings.Trim(et.APIPath, "/") == "" {
		return fmt.Errorf("%w: %s has an empty api path", ErrInvalidEntityType, et.Key)
	}
	seen := make(map[FieldName]struct{}, len(et.Fields))
	for _, f := range et.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: %s has a field without name", ErrInvalidEntityType, et.Key)
		}
		if f.Name == IdentifierField {
			return fmt.Errorf("%w: %s declares the identifier as a field", ErrInvalidEntityType, et.Key)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: %s declares %s twice", ErrInvalidEntityType, et.Key, f.Name)
		}
		seen[f.Name] = struct{}{}
		if _, err := ParseFieldType(string(f.Type)); err != nil {
			return fmt.Errorf("%s.%s: %w", et.Key, f.Name, err)
		}
	}
	return nil
}

// Registry maps entity keys to their definitions. It is built once and only
// read afterwards, so concurrent lookups need no locking.
type Registry struct {
	types map[EntityKey]EntityType
	order []EntityKey
}

// NewRegistry builds a registry from the given definitions. A later definition
// with the same key replaces the earlier one but keeps its position.
func NewRegistry(types ...EntityType) (*Registry, error) {
	r := &Registry{types: make(map[EntityKey]EntityType, len(types))}
	for _, et := range types {
		if err := et.validate(); err != nil {
			return nil, err
		}
		if _, exists := r.types[et.Key]; !exists {
			r.order = append(r.order, et.Key)
		}
		fields := make([]FieldDefinition, len(et.Fields))
		copy(fields, et.Fields)
		et.Fields = fields
		r.types[et.Key] = et
	}
	return r, nil
}

// Lookup never returns a zero EntityType on a miss: unknown keys fail with
// ErrUnknownEntityType, which keeps them apart from types without fields.
func (r *Registry) Lookup(key EntityKey) (EntityType, error) {
	et, ok := r.types[key]
	if !ok {
		return EntityType{}, fmt.Errorf("%w: %s", ErrUnknownEntityType, key)
	}
	return et, nil
}

func (r *Registry) Keys() []EntityKey {
	keys := make([]EntityKey, len(r.order))
	copy(keys, r.order)
	return keys
}

const (
	EntityDrones  EntityKey = "Drones"
	EntityPilots  EntityKey = "Pilots"
	EntityFlights EntityKey = "Flights"
)

var notRequired = false

var PredefinedEntityTypes = []EntityType{
	{
		Key:     EntityDrones,
		APIPath: "/drones",
		Fields: []FieldDefinition{
			NewFieldDefinition("name", "Drone Name", FieldTypeText, nil),
			NewFieldDefinition("weight", "Weight", FieldTypeNumber, nil),
		},
	},
	{
		Key:     EntityPilots,
		APIPath: "/pilots",
		Fields: []FieldDefinition{
			NewFieldDefinition("name", "Pilot Name", FieldTypeText, nil),
			NewFieldDefinition("age", "Age", FieldTypeNumber, nil),
		},
	},
	{
		Key:     EntityFlights,
		APIPath: "/flights",
		Fields: []FieldDefinition{
			NewFieldDefinition("pilot_id", "Pilot ID", FieldTypeNumber, nil),
			NewFieldDefinition("drone_id", "Drone ID", FieldTypeNumber, nil),
			NewFieldDefinition("flight_location", "Flight Location", FieldTypeText, &notRequired),
			NewFieldDefinition("footage_recorded", "Footage recorded?", FieldTypeBoolean, &notRequired),
		},
	},
}

// NewDefaultRegistry returns the registry of the fleet API wire contract,
// extended or overridden by the given definitions.
func NewDefaultRegistry(overrides ...EntityType) (*Registry, error) {
	types := make([]EntityType, 0, len(PredefinedEntityTypes)+len(overrides))
	types = append(types, PredefinedEntityTypes...)
	types = append(types, overrides...)
	return NewRegistry(types...)
}

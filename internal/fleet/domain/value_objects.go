package domain

type ID int

type EntityKey string

func (vo EntityKey) String() string {
	return string(vo)
}

type FieldName string

func (vo FieldName) String() string {
	return string(vo)
}

type Label string

func (vo Label) String() string {
	return string(vo)
}

// IdentifierField is the wire name of the primary key every entity carries.
// It is never part of an EntityType's declared fields.
const IdentifierField FieldName = "id"

// IdentifierLabel is the user-facing label of IdentifierField.
const IdentifierLabel Label = "ID"

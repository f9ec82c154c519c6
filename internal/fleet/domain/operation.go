package domain

import "fmt"

type Operation string

const (
	OperationNone   Operation = ""
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
	OperationFind   Operation = "find"
)

func ParseOperation(value string) (Operation, error) {
	switch op := Operation(value); op {
	case OperationNone, OperationCreate, OperationUpdate, OperationDelete, OperationFind:
		return op, nil
	default:
		return OperationNone, fmt.Errorf("%w: %q", ErrUnknownOperation, value)
	}
}

// TakesIdentifier reports whether the operation addresses a single existing
// entity through its identifier.
func (o Operation) TakesIdentifier() bool {
	return o == OperationUpdate || o == OperationDelete
}

package usecases

import (
	"context"
	"dronefleet/internal/fleet/domain"
	"dronefleet/internal/fleet/forms"
	"dronefleet/internal/fleet/presentation"
	"fmt"
)

// ManagementSession is one user's work on a single entity type: the selected
// operation and the form being filled in. It is not safe for concurrent use.
type ManagementSession struct {
	entityType domain.EntityType
	operation  domain.Operation
	state      *forms.FormState
	entities   EntityService
}

func NewManagementSession(registry *domain.Registry, key domain.EntityKey, entities EntityService) (*ManagementSession, error) {
	entityType, err := registry.Lookup(key)
	if err != nil {
		return nil, err
	}

	return &ManagementSession{
		entityType: entityType,
		operation:  domain.OperationNone,
		state:      forms.NewFormState(entityType),
		entities:   entities,
	}, nil
}

func (m *ManagementSession) EntityType() domain.EntityType {
	return m.entityType
}

func (m *ManagementSession) Operation() domain.Operation {
	return m.operation
}

func (m *ManagementSession) State() *forms.FormState {
	return m.state
}

// SelectOperation switches the operation and clears the form.
func (m *ManagementSession) SelectOperation(op domain.Operation) {
	m.operation = op
	m.state.Reset()
}

func (m *ManagementSession) Fields() []forms.DisplayField {
	return forms.DeriveFields(m.entityType, m.operation)
}

func (m *ManagementSession) RenderForm() string {
	return presentation.RenderForm(m.operation, m.Fields(), m.state)
}

// Submit validates and coerces the form locally, sends the request and
// returns the text to show. The form is cleared only when the action
// succeeds.
func (m *ManagementSession) Submit(ctx context.Context) (string, error) {
	if m.operation == domain.OperationNone {
		return "", fmt.Errorf("%w: no operation selected", domain.ErrUnknownOperation)
	}

	values := m.state.Values()
	if err := forms.Validate(m.entityType, m.operation, values); err != nil {
		return "", err
	}

	output, err := m.dispatch(ctx, values)
	if err != nil {
		return "", err
	}

	m.state.Reset()
	return output, nil
}

func (m *ManagementSession) dispatch(ctx context.Context, values forms.Values) (string, error) {
	key := m.entityType.Key

	if m.operation == domain.OperationFind {
		entities, err := m.entities.Find(ctx, key, values)
		if err != nil {
			return "", err
		}
		return presentation.RenderTable(m.entityType, entities), nil
	}

	coerced, err := forms.Coerce(m.entityType, values)
	if err != nil {
		return "", err
	}

	var payload any
	switch m.operation {
	case domain.OperationCreate:
		payload, err = m.entities.Create(ctx, key, coerced)
	case domain.OperationUpdate, domain.OperationDelete:
		id, idErr := forms.Identifier(coerced)
		if idErr != nil {
			return "", idErr
		}
		if m.operation == domain.OperationUpdate {
			payload, err = m.entities.Update(ctx, key, id, coerced)
		} else {
			payload, err = m.entities.Delete(ctx, key, id)
		}
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownOperation, m.operation)
	}
	if err != nil {
		return "", err
	}

	return presentation.FormatSuccess(payload, m.operation, m.entityType), nil
}

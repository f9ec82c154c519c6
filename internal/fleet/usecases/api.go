package usecases

import (
	"context"
	"dronefleet/internal/fleet/domain"
	"dronefleet/internal/fleet/forms"
)

//go:generate mockgen -source=./api.go -destination=../../../test/unit/doubles/fleet/usecases/api_mock.go -package=usecases

type EntityService interface {
	List(ctx context.Context, key domain.EntityKey) ([]domain.Entity, error)
	Refresh(ctx context.Context, key domain.EntityKey) ([]domain.Entity, error)
	Create(ctx context.Context, key domain.EntityKey, coerced forms.Values) (any, error)
	Update(ctx context.Context, key domain.EntityKey, id domain.ID, coerced forms.Values) (any, error)
	Delete(ctx context.Context, key domain.EntityKey, id domain.ID) (any, error)
	Find(ctx context.Context, key domain.EntityKey, values forms.Values) ([]domain.Entity, error)
}

type AuthService interface {
	Login(ctx context.Context, username, password string) error
	Register(ctx context.Context, username, password, roles string) (any, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (string, error)
}

package usecases

import (
	"context"
	"dronefleet/internal/infra/httpclient"
)

// APIClient is the transport the services talk to the fleet API through.
type APIClient interface {
	Do(ctx context.Context, req httpclient.Request) (httpclient.Response, error)
}

// SessionStore persists the session keys between invocations.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

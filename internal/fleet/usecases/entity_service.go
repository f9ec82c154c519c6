package usecases

import (
	"context"
	"dronefleet/internal/fleet/domain"
	"dronefleet/internal/fleet/forms"
	"dronefleet/internal/infra/cache"
	"dronefleet/internal/infra/httpclient"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

func NewEntityService(
	registry *domain.Registry,
	client APIClient,
	session *Session,
	listCache cache.Cache,
) *SimpleEntityService {
	return &SimpleEntityService{
		registry:  registry,
		client:    client,
		session:   session,
		listCache: listCache,
	}
}

var _ EntityService = (*SimpleEntityService)(nil)

type SimpleEntityService struct {
	registry  *domain.Registry
	client    APIClient
	session   *Session
	listCache cache.Cache
}

// List fetches every entity of the type. A token is attached when one is
// stored but listing does not require it. Overlapping calls for the same type
// share one request.
func (s *SimpleEntityService) List(ctx context.Context, key domain.EntityKey) ([]domain.Entity, error) {
	entityType, err := s.registry.Lookup(key)
	if err != nil {
		return nil, err
	}

	token, err := s.session.Token(ctx)
	if err != nil {
		return nil, err
	}

	value, err := s.listCache.GetOrLoad(ctx, listCacheKey(key), func(ctx context.Context) (any, error) {
		return s.fetchEntities(ctx, httpclient.Request{
			Method: http.MethodGet,
			Path:   entityType.APIPath,
			Token:  token,
		})
	})
	if err != nil {
		slog.Error("listing entities", slog.String("type", key.String()), slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing %s: %w", key, err)
	}

	entities, ok := value.([]domain.Entity)
	if !ok {
		return nil, fmt.Errorf("listing %s: unexpected cached value %T", key, value)
	}
	return entities, nil
}

// Refresh drops the cached list of the type and fetches it again.
func (s *SimpleEntityService) Refresh(ctx context.Context, key domain.EntityKey) ([]domain.Entity, error) {
	if _, err := s.registry.Lookup(key); err != nil {
		return nil, err
	}
	s.listCache.Invalidate(ctx, listCacheKey(key))
	return s.List(ctx, key)
}

func (s *SimpleEntityService) Create(ctx context.Context, key domain.EntityKey, coerced forms.Values) (any, error) {
	entityType, token, err := s.prepare(ctx, key)
	if err != nil {
		return nil, err
	}

	payload, err := s.mutate(ctx, key, httpclient.Request{
		Method: http.MethodPost,
		Path:   entityType.APIPath,
		Body:   forms.RequestBody(coerced),
		Token:  token,
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", entityType.Singular(), err)
	}

	slog.Info("entity created", slog.String("type", key.String()))
	return payload, nil
}

// Update sends the changed fields. The identifier is part of the URL only.
func (s *SimpleEntityService) Update(ctx context.Context, key domain.EntityKey, id domain.ID, coerced forms.Values) (any, error) {
	entityType, token, err := s.prepare(ctx, key)
	if err != nil {
		return nil, err
	}

	payload, err := s.mutate(ctx, key, httpclient.Request{
		Method: http.MethodPut,
		Path:   entityPath(entityType, id),
		Body:   forms.RequestBody(coerced),
		Token:  token,
	})
	if err != nil {
		return nil, fmt.Errorf("updating %s %d: %w", entityType.Singular(), id, err)
	}

	slog.Info("entity updated", slog.String("type", key.String()), slog.Int("id", int(id)))
	return payload, nil
}

func (s *SimpleEntityService) Delete(ctx context.Context, key domain.EntityKey, id domain.ID) (any, error) {
	entityType, token, err := s.prepare(ctx, key)
	if err != nil {
		return nil, err
	}

	payload, err := s.mutate(ctx, key, httpclient.Request{
		Method: http.MethodDelete,
		Path:   entityPath(entityType, id),
		Token:  token,
	})
	if err != nil {
		return nil, fmt.Errorf("deleting %s %d: %w", entityType.Singular(), id, err)
	}

	slog.Info("entity deleted", slog.String("type", key.String()), slog.Int("id", int(id)))
	return payload, nil
}

// Find searches with the non-empty fields of values as query parameters.
func (s *SimpleEntityService) Find(ctx context.Context, key domain.EntityKey, values forms.Values) ([]domain.Entity, error) {
	entityType, token, err := s.prepare(ctx, key)
	if err != nil {
		return nil, err
	}

	query, err := forms.QueryValues(entityType, values)
	if err != nil {
		return nil, err
	}

	entities, err := s.fetchEntities(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   strings.TrimSuffix(entityType.APIPath, "/") + "/search",
		Query:  query,
		Token:  token,
	})
	if err != nil {
		slog.Error("finding entities", slog.String("type", key.String()), slog.String("error", err.Error()))
		return nil, fmt.Errorf("finding %s: %w", key, err)
	}
	return entities, nil
}

// prepare resolves the entity type and the token. It fails before any
// request is made when nobody is logged in.
func (s *SimpleEntityService) prepare(ctx context.Context, key domain.EntityKey) (domain.EntityType, string, error) {
	entityType, err := s.registry.Lookup(key)
	if err != nil {
		return domain.EntityType{}, "", err
	}

	token, err := s.session.RequireToken(ctx)
	if err != nil {
		return domain.EntityType{}, "", err
	}
	return entityType, token, nil
}

func (s *SimpleEntityService) mutate(ctx context.Context, key domain.EntityKey, req httpclient.Request) (any, error) {
	resp, err := s.client.Do(ctx, req)
	if err != nil {
		slog.Error("sending request",
			slog.String("method", req.Method),
			slog.String("path", req.Path),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.listCache.Invalidate(ctx, listCacheKey(key))

	var payload any
	if err := resp.Decode(&payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *SimpleEntityService) fetchEntities(ctx context.Context, req httpclient.Request) ([]domain.Entity, error) {
	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return domain.DecodeEntities(resp.Body)
}

func entityPath(entityType domain.EntityType, id domain.ID) string {
	return strings.TrimSuffix(entityType.APIPath, "/") + "/" + strconv.Itoa(int(id))
}

func listCacheKey(key domain.EntityKey) string {
	return "list:" + key.String()
}

package usecases

import (
	"context"
	"dronefleet/internal/fleet/domain"
	"dronefleet/internal/infra/kvstore"
	"errors"
	"fmt"
	"log/slog"
)

const (
	TokenKey      = "userToken"
	UsernameKey   = "username"
	GuestUsername = "Guest"
)

// Session owns the bearer token. It is the only writer of the token keys and
// is passed explicitly to every service that needs authentication.
type Session struct {
	store SessionStore
}

func NewSession(store SessionStore) *Session {
	return &Session{store: store}
}

// Token returns the stored bearer token or an empty string when nobody is
// logged in.
func (s *Session) Token(ctx context.Context) (string, error) {
	return s.read(ctx, TokenKey)
}

func (s *Session) Username(ctx context.Context) (string, error) {
	username, err := s.read(ctx, UsernameKey)
	if err != nil {
		return "", err
	}
	if username == "" {
		return GuestUsername, nil
	}
	return username, nil
}

func (s *Session) IsAuthenticated(ctx context.Context) (bool, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return false, err
	}
	return token != "", nil
}

// RequireToken returns the token or domain.ErrUnauthenticated.
func (s *Session) RequireToken(ctx context.Context) (string, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", domain.ErrUnauthenticated
	}
	return token, nil
}

func (s *Session) Start(ctx context.Context, token, username string) error {
	if err := s.store.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("storing session token: %w", err)
	}
	if err := s.store.Set(ctx, UsernameKey, username); err != nil {
		return fmt.Errorf("storing username: %w", err)
	}
	slog.Info("session started", slog.String("username", username))
	return nil
}

// End clears the token and the username together.
func (s *Session) End(ctx context.Context) error {
	if err := s.store.Delete(ctx, TokenKey, UsernameKey); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	slog.Info("session ended")
	return nil
}

func (s *Session) read(ctx context.Context, key string) (string, error) {
	value, err := s.store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}
	return value, nil
}

package usecases

import (
	"context"
	"dronefleet/internal/infra/httpclient"
	"dronefleet/internal/infra/utils"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

var (
	ErrLoginFailed        = errors.New("login failed")
	ErrRegistrationFailed = errors.New("registration failed")
)

const (
	loginPath    = "auth/login"
	registerPath = "Users"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

type registerRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

func NewAuthService(client APIClient, session *Session) *SimpleAuthService {
	return &SimpleAuthService{
		client:  client,
		session: session,
	}
}

var _ AuthService = (*SimpleAuthService)(nil)

type SimpleAuthService struct {
	client  APIClient
	session *Session
}

func (s *SimpleAuthService) Login(ctx context.Context, username, password string) error {
	resp, err := s.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   loginPath,
		Body:   loginRequest{Username: username, Password: password},
	})
	if err != nil {
		slog.Warn("login rejected", slog.String("username", username), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	var body loginResponse
	if err := resp.Decode(&body); err != nil {
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	if body.AccessToken == "" {
		return fmt.Errorf("%w: no access token in response", ErrLoginFailed)
	}

	return s.session.Start(ctx, body.AccessToken, username)
}

// Register creates a user. roles is a comma separated list.
func (s *SimpleAuthService) Register(ctx context.Context, username, password, roles string) (any, error) {
	resp, err := s.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   registerPath,
		Body: registerRequest{
			Username: username,
			Password: password,
			Roles:    utils.SplitAndTrim(roles),
		},
	})
	if err != nil {
		slog.Warn("registration rejected", slog.String("username", username), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}

	var payload any
	if err := resp.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}

	slog.Info("user registered", slog.String("username", username))
	return payload, nil
}

func (s *SimpleAuthService) Logout(ctx context.Context) error {
	return s.session.End(ctx)
}

func (s *SimpleAuthService) CurrentUser(ctx context.Context) (string, error) {
	return s.session.Username(ctx)
}

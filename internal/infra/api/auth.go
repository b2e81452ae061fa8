package api

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
)

type authGateway struct {
	client *Client
}

func NewAuthRepository(client *Client) repository.AuthRepository {
	return &authGateway{client: client}
}

// Refresh relies on the refresh cookie held in the jar.
func (g *authGateway) Refresh(ctx context.Context) (string, error) {
	var out refreshResponse
	if err := g.client.do(ctx, call{method: http.MethodPost, path: "/auth/refresh"}, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.WithStack(domainerrors.ErrMalformedResponse.WithDetails("missing accessToken"))
	}

	return out.AccessToken, nil
}

func (g *authGateway) Profile(ctx context.Context, accessToken string) (*entity.User, error) {
	var out profileResponse
	req := call{method: http.MethodGet, path: "/auth/profile", token: accessToken}
	if err := g.client.do(ctx, req, &out); err != nil {
		return nil, err
	}

	return unwrap(out.User, "user")
}

func (g *authGateway) Login(ctx context.Context, credentials entity.Credentials) (*entity.AuthResult, error) {
	return g.authenticate(ctx, "/auth/login", credentials)
}

func (g *authGateway) Register(ctx context.Context, registration entity.Registration) (*entity.AuthResult, error) {
	return g.authenticate(ctx, "/auth/register", registration)
}

func (g *authGateway) authenticate(ctx context.Context, path string, payload any) (*entity.AuthResult, error) {
	req, err := jsonCall(http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}

	var out authResponse
	if err := g.client.do(ctx, req, &out); err != nil {
		return nil, err
	}
	if out.Data.User == nil || out.Data.AccessToken == "" {
		return nil, errors.WithStack(domainerrors.ErrMalformedResponse.WithDetails("missing user or accessToken"))
	}

	return &entity.AuthResult{User: out.Data.User, AccessToken: out.Data.AccessToken}, nil
}

func (g *authGateway) Logout(ctx context.Context) error {
	return g.client.do(ctx, call{method: http.MethodPost, path: "/auth/logout"}, nil)
}

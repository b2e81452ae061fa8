// Package repository defines the interfaces for the backend gateways and local persistence.
// These interfaces act as a contract between the application layer and the infrastructure layer.
package repository

import (
	"context"

	"storefront/internal/domain/entity"
)

// AuthRepository talks to the backend authentication endpoints.
type AuthRepository interface {
	// Refresh exchanges the refresh credential held in the cookie jar for a new access token.
	Refresh(ctx context.Context) (string, error)

	// Profile fetches the user the given access token belongs to.
	Profile(ctx context.Context, accessToken string) (*entity.User, error)

	Login(ctx context.Context, credentials entity.Credentials) (*entity.AuthResult, error)

	Register(ctx context.Context, registration entity.Registration) (*entity.AuthResult, error)

	// Logout revokes the refresh credential on the backend.
	Logout(ctx context.Context) error
}

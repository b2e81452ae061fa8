// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"storefront/internal/domain/entity"
)

// AuthUsecase owns every write of identity into the session store.
type AuthUsecase interface {
	// Resolve establishes who the caller is. It only contacts the backend
	// while the session is unresolved and no token is held; concurrent
	// callers share one resolution. Failure leaves an anonymous session.
	Resolve(ctx context.Context) entity.Session

	Login(ctx context.Context, credentials entity.Credentials) (*entity.User, error)
	Register(ctx context.Context, registration entity.Registration) (*entity.User, error)

	// Logout revokes the refresh credential, then clears the session and every cache entry.
	Logout(ctx context.Context) error

	// Expire drops an authenticated session after the backend rejected its token.
	Expire(ctx context.Context)

	// FallbackToken is the persisted access token, used when the session holds none.
	FallbackToken() string
	RestoreFallbackToken(token string)
}

package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/query"
	"storefront/internal/session"
	"storefront/internal/usecase"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// authService implements the AuthUsecase interface.
type authService struct {
	authRepo  repository.AuthRepository
	store     *session.Store
	queries   *query.Client
	coupons   usecase.CouponUsecase
	inspector service.TokenInspector
	logger    *slog.Logger
	now       func() time.Time

	resolving singleflight.Group

	mu       sync.Mutex
	fallback string
}

// NewAuthService is the constructor for authService.
func NewAuthService(
	authRepo repository.AuthRepository,
	store *session.Store,
	queries *query.Client,
	coupons usecase.CouponUsecase,
	inspector service.TokenInspector,
	logger *slog.Logger,
) usecase.AuthUsecase {
	return &authService{
		authRepo:  authRepo,
		store:     store,
		queries:   queries,
		coupons:   coupons,
		inspector: inspector,
		logger:    logger,
		now:       time.Now,
	}
}

func (srv *authService) log(ctx context.Context) *slog.Logger {
	return loggerFor(ctx, srv.logger)
}

func (srv *authService) Resolve(ctx context.Context) entity.Session {
	if srv.store.Resolved() || srv.store.AccessToken() != "" {
		return srv.store.Snapshot()
	}

	ch := srv.resolving.DoChan("resolve", func() (any, error) {
		srv.resolve(context.WithoutCancel(ctx))

		return nil, nil
	})

	select {
	case <-ctx.Done():
	case <-ch:
	}

	return srv.store.Snapshot()
}

func (srv *authService) resolve(ctx context.Context) {
	if !srv.store.BeginResolve() {
		return
	}

	token, err := srv.authRepo.Refresh(ctx)
	if err == nil {
		user, profileErr := srv.authRepo.Profile(ctx, token)
		if profileErr == nil {
			srv.authenticate(*user, token)
			srv.log(ctx).Debug("Session resolved from refresh credential", slog.String("user_id", user.ID))

			return
		}
		err = profileErr
	}
	srv.log(ctx).Debug("Refresh exchange failed", slog.Any("error", err))

	if fallback := srv.FallbackToken(); fallback != "" && srv.usable(fallback) {
		user, profileErr := srv.authRepo.Profile(ctx, fallback)
		if profileErr == nil {
			srv.authenticate(*user, fallback)
			srv.log(ctx).Debug("Session resolved from persisted token", slog.String("user_id", user.ID))

			return
		}
		srv.log(ctx).Debug("Persisted token rejected", slog.Any("error", profileErr))
	}

	srv.setFallback("")
	srv.store.Clear()
}

// usable reports whether a persisted token is still worth presenting.
func (srv *authService) usable(token string) bool {
	claims, err := srv.inspector.Inspect(token)
	if err != nil {
		return false
	}

	return !claims.Expired(srv.now())
}

func (srv *authService) authenticate(user entity.User, token string) {
	var expiresAt time.Time
	if claims, err := srv.inspector.Inspect(token); err == nil {
		expiresAt = claims.ExpiresAt
	}

	srv.store.SetAuthenticated(user, token, expiresAt)
	srv.setFallback(token)
}

func (srv *authService) Login(ctx context.Context, credentials entity.Credentials) (*entity.User, error) {
	srv.log(ctx).Info("Login attempt", slog.String("email", credentials.Email))

	result, err := srv.authRepo.Login(ctx, credentials)
	if err != nil {
		return nil, errors.Wrap(err, "login")
	}

	return srv.signIn(ctx, result)
}

func (srv *authService) Register(ctx context.Context, registration entity.Registration) (*entity.User, error) {
	srv.log(ctx).Info("Registration attempt", slog.String("email", registration.Email))

	result, err := srv.authRepo.Register(ctx, registration)
	if err != nil {
		return nil, errors.Wrap(err, "register")
	}

	return srv.signIn(ctx, result)
}

func (srv *authService) signIn(ctx context.Context, result *entity.AuthResult) (*entity.User, error) {
	if result == nil || result.User == nil || result.AccessToken == "" {
		return nil, errors.WithStack(domainerrors.ErrMalformedResponse.WithDetails("auth response without user or token"))
	}

	srv.authenticate(*result.User, result.AccessToken)
	srv.queries.Remove(identityScoped()...)

	srv.log(ctx).Info("Signed in", slog.String("user_id", result.User.ID), slog.String("role", result.User.Role.String()))
	user := *result.User

	return &user, nil
}

func (srv *authService) Logout(ctx context.Context) error {
	if err := srv.authRepo.Logout(ctx); err != nil {
		srv.log(ctx).Warn("Backend logout failed, clearing local session", slog.Any("error", err))
	}

	srv.reset()
	srv.log(ctx).Info("Signed out")

	return nil
}

func (srv *authService) Expire(ctx context.Context) {
	if !srv.store.IsAuthenticated() {
		return
	}

	srv.log(ctx).Info("Session expired", slog.String("user_id", srv.store.Scope()))
	srv.reset()
}

func (srv *authService) reset() {
	srv.setFallback("")
	srv.store.Clear()
	srv.coupons.Reset()
	srv.queries.Clear()
}

func (srv *authService) FallbackToken() string {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	return srv.fallback
}

func (srv *authService) RestoreFallbackToken(token string) {
	srv.setFallback(token)
}

func (srv *authService) setFallback(token string) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.fallback = token
}

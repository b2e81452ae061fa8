package impl

import (
	"context"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/guard"
	"storefront/internal/infra/auth"
	mockRepo "storefront/internal/mocks/repository"
	"storefront/internal/query"
	"storefront/internal/session"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// authServiceFixtures holds all test dependencies for auth service tests.
type authServiceFixtures struct {
	service    usecase.AuthUsecase
	store      *session.Store
	queries    *query.Client
	coupons    usecase.CouponUsecase
	authRepo   *mockRepo.MockAuthRepository
	couponRepo *mockRepo.MockCouponRepository
}

func createTestAuthService(t *testing.T) authServiceFixtures {
	authRepo := mockRepo.NewMockAuthRepository(t)
	couponRepo := mockRepo.NewMockCouponRepository(t)
	store := session.NewStore()
	queries := newTestQueries()
	coupons := NewCouponService(couponRepo, queries, newDiscardLogger())

	return authServiceFixtures{
		service:    NewAuthService(authRepo, store, queries, coupons, auth.NewJWTInspector(), newDiscardLogger()),
		store:      store,
		queries:    queries,
		coupons:    coupons,
		authRepo:   authRepo,
		couponRepo: couponRepo,
	}
}

func TestAuthService_Resolve_FromRefreshCredential(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	token := signedToken(t, "u1", time.Now().Add(time.Hour))
	user := &entity.User{ID: "u1", Fullname: "Ada", Role: entity.RoleUser}

	fx.authRepo.On("Refresh", mock.Anything).Return(token, nil).Once()
	fx.authRepo.On("Profile", mock.Anything, token).Return(user, nil).Once()

	sess := fx.service.Resolve(ctx)

	assert.Equal(t, entity.SessionAuthenticated, sess.Status)
	require.NotNil(t, sess.User)
	assert.Equal(t, "u1", sess.User.ID)
	assert.Equal(t, token, fx.store.AccessToken())
	assert.False(t, sess.ExpiresAt.IsZero())
	assert.Equal(t, token, fx.service.FallbackToken())
}

func TestAuthService_Resolve_FailureClearsSession(t *testing.T) {
	fx := createTestAuthService(t)

	fx.authRepo.On("Refresh", mock.Anything).Return("", domainerrors.ErrUnauthorized).Once()

	sess := fx.service.Resolve(context.Background())

	assert.Equal(t, entity.SessionAnonymous, sess.Status)
	assert.Nil(t, sess.User)
	assert.Empty(t, sess.AccessToken)
	assert.Equal(t, entity.GuestScope, fx.store.Scope())
	fx.authRepo.AssertNotCalled(t, "Profile", mock.Anything, mock.Anything)
}

func TestAuthService_Resolve_FallsBackToPersistedToken(t *testing.T) {
	fx := createTestAuthService(t)
	persisted := signedToken(t, "u1", time.Now().Add(time.Hour))

	fx.service.RestoreFallbackToken(persisted)
	fx.authRepo.On("Refresh", mock.Anything).Return("", domainerrors.ErrUnauthorized).Once()
	fx.authRepo.On("Profile", mock.Anything, persisted).Return(&entity.User{ID: "u1", Role: entity.RoleAdmin}, nil).Once()

	sess := fx.service.Resolve(context.Background())

	assert.Equal(t, entity.SessionAuthenticated, sess.Status)
	assert.Equal(t, persisted, fx.store.AccessToken())
}

func TestAuthService_Resolve_DropsExpiredPersistedToken(t *testing.T) {
	fx := createTestAuthService(t)

	fx.service.RestoreFallbackToken(signedToken(t, "u1", time.Now().Add(-time.Minute)))
	fx.authRepo.On("Refresh", mock.Anything).Return("", domainerrors.ErrUnauthorized).Once()

	sess := fx.service.Resolve(context.Background())

	assert.Equal(t, entity.SessionAnonymous, sess.Status)
	assert.Empty(t, fx.service.FallbackToken())
	fx.authRepo.AssertNotCalled(t, "Profile", mock.Anything, mock.Anything)
}

func TestAuthService_Resolve_RunsOnce(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.authRepo.On("Refresh", mock.Anything).
		After(30*time.Millisecond).
		Return("", domainerrors.ErrUnauthorized).
		Once()

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, entity.SessionAnonymous, fx.service.Resolve(ctx).Status)
		}()
	}
	wg.Wait()

	fx.service.Resolve(ctx)
	fx.authRepo.AssertNumberOfCalls(t, "Refresh", 1)
}

func TestAuthService_Resolve_SkippedWhenTokenHeld(t *testing.T) {
	fx := createTestAuthService(t)
	fx.store.SetAuthenticated(entity.User{ID: "u1"}, "token", time.Now().Add(time.Hour))

	sess := fx.service.Resolve(context.Background())

	assert.Equal(t, entity.SessionAuthenticated, sess.Status)
	fx.authRepo.AssertNotCalled(t, "Refresh", mock.Anything)
}

func TestAuthService_Login_SellerPassesSellerGuard(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	fx.store.Clear()
	creds := entity.Credentials{Email: "seller@example.com", Password: "secret"}
	token := signedToken(t, "s1", time.Now().Add(time.Hour))

	query.SetData(fx.queries, cartKey(entity.GuestScope), func(entity.Cart, bool) entity.Cart {
		return *cartOf(cartLine("p1", 10, 1))
	})
	catalogKey := query.K(resourceProducts, 1, 10, "", "")
	query.SetData(fx.queries, catalogKey, func(entity.Page[entity.Product], bool) entity.Page[entity.Product] {
		return entity.Page[entity.Product]{Page: 1, Limit: 10}
	})

	fx.authRepo.On("Login", mock.Anything, creds).Return(&entity.AuthResult{
		User:        &entity.User{ID: "s1", Fullname: "Sam", Role: entity.RoleSeller},
		AccessToken: token,
	}, nil).Once()

	user, err := fx.service.Login(ctx, creds)

	require.NoError(t, err)
	assert.Equal(t, entity.RoleSeller, user.Role)

	sess := fx.store.Snapshot()
	require.NotNil(t, sess.User)
	assert.Equal(t, entity.RoleSeller, sess.User.Role)

	policy := guard.DefaultPolicy()
	assert.Equal(t, guard.Allow, policy.Check(sess, "/seller/products"))
	assert.Equal(t, guard.Forbidden, policy.Check(sess, "/admin/users"))

	assert.False(t, query.Peek[entity.Cart](fx.queries, cartKey(entity.GuestScope)).HasData, "guest cart purged on sign-in")
	assert.True(t, query.Peek[entity.Page[entity.Product]](fx.queries, catalogKey).HasData, "public catalog kept")
}

func TestAuthService_Login_FailureLeavesSession(t *testing.T) {
	fx := createTestAuthService(t)
	fx.store.Clear()
	creds := entity.Credentials{Email: "a@example.com", Password: "wrong"}

	fx.authRepo.On("Login", mock.Anything, creds).
		Return(nil, domainerrors.FromStatus(401, "Invalid credentials", nil)).
		Once()

	user, err := fx.service.Login(context.Background(), creds)

	require.Error(t, err)
	assert.Nil(t, user)
	assert.True(t, domainerrors.IsKind(err, domainerrors.KindUnauthorized))
	assert.Equal(t, "Invalid credentials", domainerrors.AsAppError(err).Message())
	assert.Equal(t, entity.SessionAnonymous, fx.store.Status())
}

func TestAuthService_Register_MalformedResponse(t *testing.T) {
	fx := createTestAuthService(t)
	reg := entity.Registration{Fullname: "Ada", Email: "ada@example.com", Password: "secret"}

	fx.authRepo.On("Register", mock.Anything, reg).Return(&entity.AuthResult{AccessToken: "t"}, nil).Once()

	_, err := fx.service.Register(context.Background(), reg)

	require.ErrorIs(t, err, domainerrors.ErrMalformedResponse)
	assert.False(t, fx.store.IsAuthenticated())
}

func TestAuthService_Logout_ClearsEverything(t *testing.T) {
	tests := []struct {
		name    string
		backend error
	}{
		{name: "backend accepts", backend: nil},
		{name: "backend unreachable", backend: domainerrors.ErrNetworkUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestAuthService(t)
			ctx := context.Background()
			fx.store.SetAuthenticated(entity.User{ID: "u1"}, "token", time.Now().Add(time.Hour))
			fx.service.RestoreFallbackToken("token")
			query.SetData(fx.queries, cartKey("u1"), func(entity.Cart, bool) entity.Cart { return *cartOf() })

			fx.couponRepo.On("Validate", mock.Anything, mock.Anything).
				Return(&entity.Coupon{Code: "TEN", Type: entity.CouponFixed, Value: decimal.NewFromInt(10)}, nil).
				Once()
			_, err := fx.coupons.Apply(ctx, "ten", decimal.NewFromInt(50))
			require.NoError(t, err)

			fx.authRepo.On("Logout", mock.Anything).Return(tt.backend).Once()

			require.NoError(t, fx.service.Logout(ctx))

			assert.Equal(t, entity.SessionAnonymous, fx.store.Status())
			assert.Empty(t, fx.store.AccessToken())
			assert.Empty(t, fx.service.FallbackToken())
			assert.Empty(t, fx.coupons.Codes())
			assert.Zero(t, fx.queries.Len())
		})
	}
}

func TestAuthService_Expire(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.store.Clear()
	fx.service.Expire(ctx)
	assert.Equal(t, entity.SessionAnonymous, fx.store.Status())

	fx.store.SetAuthenticated(entity.User{ID: "u1"}, "token", time.Now().Add(time.Hour))
	query.SetData(fx.queries, ordersKey("u1", "mine"), func([]entity.Order, bool) []entity.Order { return nil })

	fx.service.Expire(ctx)

	assert.False(t, fx.store.IsAuthenticated())
	assert.Zero(t, fx.queries.Len())
}

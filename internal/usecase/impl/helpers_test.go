package impl

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"storefront/config"
	"storefront/internal/domain/entity"
	"storefront/internal/query"
	"storefront/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestQueries() *query.Client {
	return query.NewClient(newDiscardLogger(), query.WithRetry(0, 0))
}

func newTestCache() config.CacheConfig {
	return config.DefaultCache()
}

func guestStore() *session.Store {
	store := session.NewStore()
	store.Clear()

	return store
}

func userStore(user entity.User) *session.Store {
	store := session.NewStore()
	store.SetAuthenticated(user, "token-"+user.ID, time.Now().Add(time.Hour))

	return store
}

func signedToken(t *testing.T, subject string, expiresAt time.Time) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": expiresAt.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	return token
}

func cartLine(productID string, price int64, quantity int) entity.CartItem {
	return entity.CartItem{
		ItemID: "item-" + productID,
		Product: entity.CartProduct{
			ID:    productID,
			Title: "Product " + productID,
			Price: decimal.NewFromInt(price),
		},
		Quantity: quantity,
	}
}

func cartOf(items ...entity.CartItem) *entity.Cart {
	if items == nil {
		items = []entity.CartItem{}
	}

	return &entity.Cart{Items: items}
}

package repository

import (
	"context"

	"storefront/internal/domain/entity"
)

// CartRepository reads and writes the caller's cart. The scope selects the
// guest or the user cart endpoints.
type CartRepository interface {
	Get(ctx context.Context, scope string) (*entity.Cart, error)

	Add(ctx context.Context, scope, productID string, quantity int) (*entity.Cart, error)

	// UpdateQuantity sets an absolute quantity for the product's line.
	UpdateQuantity(ctx context.Context, scope, productID string, quantity int) (*entity.Cart, error)

	Remove(ctx context.Context, scope, productID string) (*entity.Cart, error)

	Clear(ctx context.Context, scope string) error

	// Summary prices the cart with the given coupon codes applied.
	Summary(ctx context.Context, scope string, couponCodes []string) (*entity.CartSummary, error)
}

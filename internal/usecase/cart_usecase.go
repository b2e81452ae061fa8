package usecase

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/query"
)

// AddToCartInput is one add-to-cart action. Product is the projection shown
// in the cart until the backend's copy arrives.
type AddToCartInput struct {
	Product  entity.CartProduct
	Quantity int
}

// CartUsecase keeps the cart, its summary and the session's cart view consistent.
type CartUsecase interface {
	Cart(ctx context.Context) query.Result[entity.Cart]

	// Summary prices the cart with the accepted coupons. It stays disabled until
	// the session is resolved and the cart has been read.
	Summary(ctx context.Context) query.Result[entity.CartSummary]

	Add(ctx context.Context, input AddToCartInput) (*entity.Cart, error)
	UpdateQuantity(ctx context.Context, productID string, quantity int) (*entity.Cart, error)
	Remove(ctx context.Context, productID string) (*entity.Cart, error)
	Clear(ctx context.Context) error
}

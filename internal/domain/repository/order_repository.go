package repository

import (
	"context"

	"storefront/internal/domain/entity"
)

type OrderRepository interface {
	// Checkout places an order from the caller's cart.
	Checkout(ctx context.Context, req entity.CheckoutRequest) (*entity.Order, error)

	// ListMine returns the caller's own orders.
	ListMine(ctx context.Context) ([]entity.Order, error)

	Get(ctx context.Context, id string) (*entity.Order, error)

	Cancel(ctx context.Context, id string) (*entity.Order, error)

	// ListAll returns every order. Back office only.
	ListAll(ctx context.Context) ([]entity.Order, error)

	UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) (*entity.Order, error)

	Delete(ctx context.Context, id string) error
}

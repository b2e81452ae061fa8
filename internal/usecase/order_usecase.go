package usecase

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/query"
)

type OrderUsecase interface {
	// Checkout places an order with the accepted coupons. A second checkout
	// while one is running is rejected.
	Checkout(ctx context.Context, address entity.ShippingAddress) (*entity.Order, error)

	MyOrders(ctx context.Context) query.Result[[]entity.Order]
	Order(ctx context.Context, id string) query.Result[entity.Order]
	Cancel(ctx context.Context, id string) (*entity.Order, error)

	// TrackingQR renders a PNG linking to the order's tracking page.
	TrackingQR(ctx context.Context, id string) ([]byte, error)

	AllOrders(ctx context.Context) query.Result[[]entity.Order]
	UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) (*entity.Order, error)
	Delete(ctx context.Context, id string) error
}

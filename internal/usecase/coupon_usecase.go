package usecase

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/query"

	"github.com/shopspring/decimal"
)

// CouponState is the caller's coupon bag.
type CouponState struct {
	Accepted []entity.Coupon `json:"accepted"`
	Pending  string          `json:"pending,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// CouponUsecase validates coupons against the cart without redeeming them.
// Accepted coupons live only on the client until checkout.
type CouponUsecase interface {
	Apply(ctx context.Context, code string, purchaseAmount decimal.Decimal) (*entity.Coupon, error)

	// Remove drops an accepted coupon locally. No request is sent.
	Remove(code string)

	State() CouponState

	// Codes returns the accepted codes in acceptance order.
	Codes() []string

	Reset()
}

// CouponAdminUsecase manages coupon definitions. Sellers only see their own.
type CouponAdminUsecase interface {
	Coupons(ctx context.Context) query.Result[[]entity.Coupon]
	Create(ctx context.Context, coupon entity.Coupon) (*entity.Coupon, error)
	Update(ctx context.Context, id string, coupon entity.Coupon) (*entity.Coupon, error)
	Delete(ctx context.Context, id string) error
}

package repository

import (
	"context"

	"storefront/internal/domain/entity"
)

type CouponRepository interface {
	// Validate checks a code against the accepted codes and the purchase amount
	// without redeeming it.
	Validate(ctx context.Context, req entity.CouponValidation) (*entity.Coupon, error)

	List(ctx context.Context) ([]entity.Coupon, error)

	Create(ctx context.Context, coupon entity.Coupon) (*entity.Coupon, error)

	Update(ctx context.Context, id string, coupon entity.Coupon) (*entity.Coupon, error)

	Delete(ctx context.Context, id string) error
}

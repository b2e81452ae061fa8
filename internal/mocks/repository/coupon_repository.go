package repository

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/stretchr/testify/mock"
)

type MockCouponRepository struct {
	mock.Mock
}

func NewMockCouponRepository(t T) *MockCouponRepository {
	m := &MockCouponRepository{}
	register(t, &m.Mock)

	return m
}

func (m *MockCouponRepository) Validate(ctx context.Context, req entity.CouponValidation) (*entity.Coupon, error) {
	args := m.Called(ctx, req)

	return ret[*entity.Coupon](args, 0), args.Error(1)
}

func (m *MockCouponRepository) List(ctx context.Context) ([]entity.Coupon, error) {
	args := m.Called(ctx)

	return ret[[]entity.Coupon](args, 0), args.Error(1)
}

func (m *MockCouponRepository) Create(ctx context.Context, coupon entity.Coupon) (*entity.Coupon, error) {
	args := m.Called(ctx, coupon)

	return ret[*entity.Coupon](args, 0), args.Error(1)
}

func (m *MockCouponRepository) Update(ctx context.Context, id string, coupon entity.Coupon) (*entity.Coupon, error) {
	args := m.Called(ctx, id, coupon)

	return ret[*entity.Coupon](args, 0), args.Error(1)
}

func (m *MockCouponRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

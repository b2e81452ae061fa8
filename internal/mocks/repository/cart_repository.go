package repository

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/stretchr/testify/mock"
)

type MockCartRepository struct {
	mock.Mock
}

func NewMockCartRepository(t T) *MockCartRepository {
	m := &MockCartRepository{}
	register(t, &m.Mock)

	return m
}

func (m *MockCartRepository) Get(ctx context.Context, scope string) (*entity.Cart, error) {
	args := m.Called(ctx, scope)

	return ret[*entity.Cart](args, 0), args.Error(1)
}

func (m *MockCartRepository) Add(ctx context.Context, scope, productID string, quantity int) (*entity.Cart, error) {
	args := m.Called(ctx, scope, productID, quantity)

	return ret[*entity.Cart](args, 0), args.Error(1)
}

func (m *MockCartRepository) UpdateQuantity(ctx context.Context, scope, productID string, quantity int) (*entity.Cart, error) {
	args := m.Called(ctx, scope, productID, quantity)

	return ret[*entity.Cart](args, 0), args.Error(1)
}

func (m *MockCartRepository) Remove(ctx context.Context, scope, productID string) (*entity.Cart, error) {
	args := m.Called(ctx, scope, productID)

	return ret[*entity.Cart](args, 0), args.Error(1)
}

func (m *MockCartRepository) Clear(ctx context.Context, scope string) error {
	return m.Called(ctx, scope).Error(0)
}

func (m *MockCartRepository) Summary(ctx context.Context, scope string, couponCodes []string) (*entity.CartSummary, error) {
	args := m.Called(ctx, scope, couponCodes)

	return ret[*entity.CartSummary](args, 0), args.Error(1)
}

package repository

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

func NewMockOrderRepository(t T) *MockOrderRepository {
	m := &MockOrderRepository{}
	register(t, &m.Mock)

	return m
}

func (m *MockOrderRepository) Checkout(ctx context.Context, req entity.CheckoutRequest) (*entity.Order, error) {
	args := m.Called(ctx, req)

	return ret[*entity.Order](args, 0), args.Error(1)
}

func (m *MockOrderRepository) ListMine(ctx context.Context) ([]entity.Order, error) {
	args := m.Called(ctx)

	return ret[[]entity.Order](args, 0), args.Error(1)
}

func (m *MockOrderRepository) Get(ctx context.Context, id string) (*entity.Order, error) {
	args := m.Called(ctx, id)

	return ret[*entity.Order](args, 0), args.Error(1)
}

func (m *MockOrderRepository) Cancel(ctx context.Context, id string) (*entity.Order, error) {
	args := m.Called(ctx, id)

	return ret[*entity.Order](args, 0), args.Error(1)
}

func (m *MockOrderRepository) ListAll(ctx context.Context) ([]entity.Order, error) {
	args := m.Called(ctx)

	return ret[[]entity.Order](args, 0), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) (*entity.Order, error) {
	args := m.Called(ctx, id, status)

	return ret[*entity.Order](args, 0), args.Error(1)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

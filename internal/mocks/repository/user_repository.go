package repository

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func NewMockUserRepository(t T) *MockUserRepository {
	m := &MockUserRepository{}
	register(t, &m.Mock)

	return m
}

func (m *MockUserRepository) List(ctx context.Context, page, limit int) (*entity.Page[entity.User], error) {
	args := m.Called(ctx, page, limit)

	return ret[*entity.Page[entity.User]](args, 0), args.Error(1)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id string, role entity.Role) (*entity.User, error) {
	args := m.Called(ctx, id, role)

	return ret[*entity.User](args, 0), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

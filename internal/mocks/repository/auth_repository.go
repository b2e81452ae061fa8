package repository

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/stretchr/testify/mock"
)

type MockAuthRepository struct {
	mock.Mock
}

func NewMockAuthRepository(t T) *MockAuthRepository {
	m := &MockAuthRepository{}
	register(t, &m.Mock)

	return m
}

func (m *MockAuthRepository) Refresh(ctx context.Context) (string, error) {
	args := m.Called(ctx)

	return args.String(0), args.Error(1)
}

func (m *MockAuthRepository) Profile(ctx context.Context, accessToken string) (*entity.User, error) {
	args := m.Called(ctx, accessToken)

	return ret[*entity.User](args, 0), args.Error(1)
}

func (m *MockAuthRepository) Login(ctx context.Context, credentials entity.Credentials) (*entity.AuthResult, error) {
	args := m.Called(ctx, credentials)

	return ret[*entity.AuthResult](args, 0), args.Error(1)
}

func (m *MockAuthRepository) Register(ctx context.Context, registration entity.Registration) (*entity.AuthResult, error) {
	args := m.Called(ctx, registration)

	return ret[*entity.AuthResult](args, 0), args.Error(1)
}

func (m *MockAuthRepository) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

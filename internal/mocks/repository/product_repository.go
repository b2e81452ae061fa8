package repository

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/stretchr/testify/mock"
)

type MockProductRepository struct {
	mock.Mock
}

func NewMockProductRepository(t T) *MockProductRepository {
	m := &MockProductRepository{}
	register(t, &m.Mock)

	return m
}

func (m *MockProductRepository) ListCatalog(ctx context.Context, q entity.CatalogQuery) (*entity.Page[entity.Product], error) {
	args := m.Called(ctx, q)

	return ret[*entity.Page[entity.Product]](args, 0), args.Error(1)
}

func (m *MockProductRepository) Get(ctx context.Context, id string) (*entity.Product, error) {
	args := m.Called(ctx, id)

	return ret[*entity.Product](args, 0), args.Error(1)
}

func (m *MockProductRepository) ListAll(ctx context.Context) ([]entity.Product, error) {
	args := m.Called(ctx)

	return ret[[]entity.Product](args, 0), args.Error(1)
}

func (m *MockProductRepository) ListDeleted(ctx context.Context) ([]entity.Product, error) {
	args := m.Called(ctx)

	return ret[[]entity.Product](args, 0), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, draft entity.ProductDraft) (*entity.Product, error) {
	args := m.Called(ctx, draft)

	return ret[*entity.Product](args, 0), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, id string, draft entity.ProductDraft) (*entity.Product, error) {
	args := m.Called(ctx, id, draft)

	return ret[*entity.Product](args, 0), args.Error(1)
}

func (m *MockProductRepository) SetPublished(ctx context.Context, id string, published bool) (*entity.Product, error) {
	args := m.Called(ctx, id, published)

	return ret[*entity.Product](args, 0), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductRepository) Restore(ctx context.Context, id string) (*entity.Product, error) {
	args := m.Called(ctx, id)

	return ret[*entity.Product](args, 0), args.Error(1)
}

type MockCategoryRepository struct {
	mock.Mock
}

func NewMockCategoryRepository(t T) *MockCategoryRepository {
	m := &MockCategoryRepository{}
	register(t, &m.Mock)

	return m
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]entity.Category, error) {
	args := m.Called(ctx)

	return ret[[]entity.Category](args, 0), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, name string) (*entity.Category, error) {
	args := m.Called(ctx, name)

	return ret[*entity.Category](args, 0), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, id, name string) (*entity.Category, error) {
	args := m.Called(ctx, id, name)

	return ret[*entity.Category](args, 0), args.Error(1)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockReviewRepository struct {
	mock.Mock
}

func NewMockReviewRepository(t T) *MockReviewRepository {
	m := &MockReviewRepository{}
	register(t, &m.Mock)

	return m
}

func (m *MockReviewRepository) ListByProduct(ctx context.Context, productID string) ([]entity.Review, error) {
	args := m.Called(ctx, productID)

	return ret[[]entity.Review](args, 0), args.Error(1)
}

func (m *MockReviewRepository) Create(ctx context.Context, draft entity.ReviewDraft) (*entity.Review, error) {
	args := m.Called(ctx, draft)

	return ret[*entity.Review](args, 0), args.Error(1)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

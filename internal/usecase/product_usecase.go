package usecase

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/query"
)

// ManageProductsInput filters and pages the back-office product list.
type ManageProductsInput struct {
	Filter entity.ProductFilter
	Page   int
	Limit  int
}

// ProductAdminUsecase manages products and categories. Sellers only see their own products.
type ProductAdminUsecase interface {
	Products(ctx context.Context, input ManageProductsInput) query.Result[entity.Page[entity.Product]]
	DeletedProducts(ctx context.Context) query.Result[[]entity.Product]

	Create(ctx context.Context, draft entity.ProductDraft) (*entity.Product, error)
	Update(ctx context.Context, id string, draft entity.ProductDraft) (*entity.Product, error)
	SetPublished(ctx context.Context, id string, published bool) (*entity.Product, error)
	Delete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) (*entity.Product, error)

	CreateCategory(ctx context.Context, name string) (*entity.Category, error)
	UpdateCategory(ctx context.Context, id, name string) (*entity.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

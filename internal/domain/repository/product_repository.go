package repository

import (
	"context"

	"storefront/internal/domain/entity"
)

type ProductRepository interface {
	// ListCatalog returns one server-side page of published products.
	ListCatalog(ctx context.Context, q entity.CatalogQuery) (*entity.Page[entity.Product], error)

	Get(ctx context.Context, id string) (*entity.Product, error)

	// ListAll returns every live product for the back office.
	ListAll(ctx context.Context) ([]entity.Product, error)

	// ListDeleted returns the soft-deleted products.
	ListDeleted(ctx context.Context) ([]entity.Product, error)

	Create(ctx context.Context, draft entity.ProductDraft) (*entity.Product, error)

	Update(ctx context.Context, id string, draft entity.ProductDraft) (*entity.Product, error)

	SetPublished(ctx context.Context, id string, published bool) (*entity.Product, error)

	// Delete soft-deletes the product.
	Delete(ctx context.Context, id string) error

	Restore(ctx context.Context, id string) (*entity.Product, error)
}

type CategoryRepository interface {
	List(ctx context.Context) ([]entity.Category, error)

	Create(ctx context.Context, name string) (*entity.Category, error)

	Update(ctx context.Context, id, name string) (*entity.Category, error)

	Delete(ctx context.Context, id string) error
}

type ReviewRepository interface {
	ListByProduct(ctx context.Context, productID string) ([]entity.Review, error)

	Create(ctx context.Context, draft entity.ReviewDraft) (*entity.Review, error)

	Delete(ctx context.Context, id string) error
}

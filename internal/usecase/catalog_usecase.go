package usecase

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/query"
)

// CatalogUsecase serves the public storefront reads.
type CatalogUsecase interface {
	Products(ctx context.Context, q entity.CatalogQuery) query.Result[entity.Page[entity.Product]]

	// Product stays disabled for an empty id.
	Product(ctx context.Context, id string) query.Result[entity.Product]

	Categories(ctx context.Context) query.Result[[]entity.Category]

	Reviews(ctx context.Context, productID string) query.Result[[]entity.Review]
	CreateReview(ctx context.Context, draft entity.ReviewDraft) (*entity.Review, error)
	DeleteReview(ctx context.Context, productID, reviewID string) error
}

package impl

import (
	"context"
	"log/slog"
	"strings"

	"storefront/config"
	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/query"
	"storefront/internal/session"
	"storefront/internal/usecase"
	"storefront/internal/util"
)

const (
	minRating = 1
	maxRating = 5
)

// catalogService implements the CatalogUsecase interface. Its reads are
// public and go through the shared store when one is configured.
type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	reviewRepo   repository.ReviewRepository
	store        *session.Store
	queries      *query.Client
	cache        config.CacheConfig
	logger       *slog.Logger
}

// NewCatalogService is the constructor for catalogService.
func NewCatalogService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	reviewRepo repository.ReviewRepository,
	store *session.Store,
	queries *query.Client,
	cache config.CacheConfig,
	logger *slog.Logger,
) usecase.CatalogUsecase {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		reviewRepo:   reviewRepo,
		store:        store,
		queries:      queries,
		cache:        cache,
		logger:       logger,
	}
}

func (srv *catalogService) Products(ctx context.Context, q entity.CatalogQuery) query.Result[entity.Page[entity.Product]] {
	q.Page = max(q.Page, 1)
	if q.Limit <= 0 {
		q.Limit = util.DefaultPageSize
	}
	q.Search = strings.TrimSpace(q.Search)

	return query.Fetch(ctx, srv.queries, query.Query[entity.Page[entity.Product]]{
		Key:       query.K(resourceProducts, q.Page, q.Limit, q.Search, q.CategoryID),
		StaleTime: srv.cache.Products,
		Shared:    true,
		Fetch: func(ctx context.Context) (entity.Page[entity.Product], error) {
			page, err := srv.productRepo.ListCatalog(ctx, q)
			if err != nil {
				return entity.Page[entity.Product]{}, err
			}

			return *page, nil
		},
	})
}

func (srv *catalogService) Product(ctx context.Context, id string) query.Result[entity.Product] {
	return query.Fetch(ctx, srv.queries, query.Query[entity.Product]{
		Key:       query.K(resourceProduct, id),
		StaleTime: srv.cache.ProductDetail,
		Shared:    true,
		Enabled:   func() bool { return id != "" },
		Fetch: func(ctx context.Context) (entity.Product, error) {
			product, err := srv.productRepo.Get(ctx, id)
			if err != nil {
				return entity.Product{}, err
			}

			return *product, nil
		},
	})
}

func (srv *catalogService) Categories(ctx context.Context) query.Result[[]entity.Category] {
	return query.Fetch(ctx, srv.queries, query.Query[[]entity.Category]{
		Key:       query.K(resourceCategories),
		StaleTime: srv.cache.Categories,
		Shared:    true,
		Fetch:     srv.categoryRepo.List,
	})
}

func (srv *catalogService) Reviews(ctx context.Context, productID string) query.Result[[]entity.Review] {
	return query.Fetch(ctx, srv.queries, query.Query[[]entity.Review]{
		Key:       query.K(resourceReviews, productID),
		StaleTime: srv.cache.Reviews,
		Shared:    true,
		Enabled:   func() bool { return productID != "" },
		Fetch: func(ctx context.Context) ([]entity.Review, error) {
			return srv.reviewRepo.ListByProduct(ctx, productID)
		},
	})
}

func (srv *catalogService) CreateReview(ctx context.Context, draft entity.ReviewDraft) (*entity.Review, error) {
	if _, err := requireUser(srv.store); err != nil {
		return nil, err
	}
	if draft.ProductID == "" {
		return nil, fieldError("productId", "product is required")
	}
	if draft.Rating < minRating || draft.Rating > maxRating {
		return nil, fieldError("rating", "rating must be between 1 and 5")
	}

	return query.Mutate(ctx, srv.queries, query.Mutation[entity.ReviewDraft, *entity.Review]{
		Name: "review-create",
		Do:   srv.reviewRepo.Create,
		Invalidate: func(in entity.ReviewDraft, _ *entity.Review) []query.Key {
			return reviewKeys(in.ProductID)
		},
	}, draft)
}

func (srv *catalogService) DeleteReview(ctx context.Context, productID, reviewID string) error {
	if _, err := requireUser(srv.store); err != nil {
		return err
	}
	if reviewID == "" {
		return fieldError("id", "review id is required")
	}

	_, err := query.Mutate(ctx, srv.queries, query.Mutation[string, struct{}]{
		Name: "review-delete",
		Do: func(ctx context.Context, id string) (struct{}, error) {
			return struct{}{}, srv.reviewRepo.Delete(ctx, id)
		},
		Invalidate: func(string, struct{}) []query.Key {
			if productID == "" {
				return []query.Key{query.K(resourceReviews)}
			}

			return reviewKeys(productID)
		},
	}, reviewID)

	return err
}

// reviewKeys also covers the product detail, which carries the rating.
func reviewKeys(productID string) []query.Key {
	return []query.Key{query.K(resourceReviews, productID), query.K(resourceProduct, productID)}
}

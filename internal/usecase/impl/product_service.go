package impl

import (
	"context"
	"log/slog"
	"strings"

	"storefront/config"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/query"
	"storefront/internal/session"
	"storefront/internal/usecase"
	"storefront/internal/util"
)

// productAdminService implements the ProductAdminUsecase interface.
type productAdminService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	store        *session.Store
	queries      *query.Client
	cache        config.CacheConfig
	logger       *slog.Logger
}

// NewProductAdminService is the constructor for productAdminService.
func NewProductAdminService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	store *session.Store,
	queries *query.Client,
	cache config.CacheConfig,
	logger *slog.Logger,
) usecase.ProductAdminUsecase {
	return &productAdminService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		store:        store,
		queries:      queries,
		cache:        cache,
		logger:       logger,
	}
}

// ownerFilter restricts sellers to their own products.
func (srv *productAdminService) ownerFilter(filter entity.ProductFilter) entity.ProductFilter {
	filter.SellerID = ""
	if user := srv.store.User(); user != nil && user.Role == entity.RoleSeller {
		filter.SellerID = user.ID
	}

	return filter
}

func (srv *productAdminService) Products(ctx context.Context, input usecase.ManageProductsInput) query.Result[entity.Page[entity.Product]] {
	res := query.Fetch(ctx, srv.queries, query.Query[[]entity.Product]{
		Key:       query.K(resourceProducts, "manage", srv.store.Scope()),
		StaleTime: srv.cache.Products,
		Enabled:   authenticated(srv.store),
		Fetch:     srv.productRepo.ListAll,
	})

	filter := srv.ownerFilter(input.Filter)

	return query.Map(res, func(products []entity.Product) entity.Page[entity.Product] {
		return util.Paginate(entity.FilterProducts(products, filter), input.Page, input.Limit)
	})
}

func (srv *productAdminService) DeletedProducts(ctx context.Context) query.Result[[]entity.Product] {
	res := query.Fetch(ctx, srv.queries, query.Query[[]entity.Product]{
		Key:       query.K(resourceProducts, "deleted", srv.store.Scope()),
		StaleTime: srv.cache.Products,
		Enabled:   authenticated(srv.store),
		Fetch:     srv.productRepo.ListDeleted,
	})

	filter := srv.ownerFilter(entity.ProductFilter{})

	return query.Map(res, func(products []entity.Product) []entity.Product {
		return entity.FilterProducts(products, filter)
	})
}

type productWrite struct {
	id    string
	draft entity.ProductDraft
}

func (srv *productAdminService) Create(ctx context.Context, draft entity.ProductDraft) (*entity.Product, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	return srv.write(ctx, "product-create", productWrite{draft: draft}, func(ctx context.Context, in productWrite) (*entity.Product, error) {
		return srv.productRepo.Create(ctx, in.draft)
	})
}

func (srv *productAdminService) Update(ctx context.Context, id string, draft entity.ProductDraft) (*entity.Product, error) {
	if id == "" {
		return nil, fieldError("id", "product id is required")
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	return srv.write(ctx, "product-update", productWrite{id: id, draft: draft}, func(ctx context.Context, in productWrite) (*entity.Product, error) {
		return srv.productRepo.Update(ctx, in.id, in.draft)
	})
}

func (srv *productAdminService) SetPublished(ctx context.Context, id string, published bool) (*entity.Product, error) {
	if id == "" {
		return nil, fieldError("id", "product id is required")
	}

	return srv.write(ctx, "product-publish", productWrite{id: id}, func(ctx context.Context, in productWrite) (*entity.Product, error) {
		return srv.productRepo.SetPublished(ctx, in.id, published)
	})
}

func (srv *productAdminService) Restore(ctx context.Context, id string) (*entity.Product, error) {
	if id == "" {
		return nil, fieldError("id", "product id is required")
	}

	return srv.write(ctx, "product-restore", productWrite{id: id}, func(ctx context.Context, in productWrite) (*entity.Product, error) {
		return srv.productRepo.Restore(ctx, in.id)
	})
}

func (srv *productAdminService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fieldError("id", "product id is required")
	}

	_, err := srv.write(ctx, "product-delete", productWrite{id: id}, func(ctx context.Context, in productWrite) (*entity.Product, error) {
		return nil, srv.productRepo.Delete(ctx, in.id)
	})

	return err
}

// write runs a product mutation. Every product write changes list membership
// somewhere, so all product lists and the product's detail are invalidated.
func (srv *productAdminService) write(
	ctx context.Context,
	name string,
	in productWrite,
	do func(ctx context.Context, in productWrite) (*entity.Product, error),
) (*entity.Product, error) {
	if _, err := requireUser(srv.store); err != nil {
		return nil, err
	}

	product, err := query.Mutate(ctx, srv.queries, query.Mutation[productWrite, *entity.Product]{
		Name: name,
		Do:   do,
		Invalidate: func(in productWrite, out *entity.Product) []query.Key {
			keys := []query.Key{query.K(resourceProducts)}
			if in.id != "" {
				keys = append(keys, query.K(resourceProduct, in.id))
			}
			if out != nil && out.ID != "" && out.ID != in.id {
				keys = append(keys, query.K(resourceProduct, out.ID))
			}

			return keys
		},
	}, in)
	if err != nil {
		return nil, err
	}

	loggerFor(ctx, srv.logger).Info("Product changed", slog.String("mutation", name), slog.String("product_id", in.id))

	return product, nil
}

func validateDraft(draft entity.ProductDraft) error {
	var fields []domainerrors.FieldError
	if strings.TrimSpace(draft.Title) == "" {
		fields = append(fields, domainerrors.FieldError{Field: "title", Message: "title is required"})
	}
	if draft.Price.IsNegative() {
		fields = append(fields, domainerrors.FieldError{Field: "price", Message: "price cannot be negative"})
	}
	if draft.Stock < 0 {
		fields = append(fields, domainerrors.FieldError{Field: "stock", Message: "stock cannot be negative"})
	}
	if len(fields) > 0 {
		return domainerrors.ErrValidationFailed.WithFields(fields...)
	}

	return nil
}

func (srv *productAdminService) CreateCategory(ctx context.Context, name string) (*entity.Category, error) {
	return srv.writeCategory(ctx, "category-create", "", name, func(ctx context.Context, _, name string) (*entity.Category, error) {
		return srv.categoryRepo.Create(ctx, name)
	})
}

func (srv *productAdminService) UpdateCategory(ctx context.Context, id, name string) (*entity.Category, error) {
	if id == "" {
		return nil, fieldError("id", "category id is required")
	}

	return srv.writeCategory(ctx, "category-update", id, name, srv.categoryRepo.Update)
}

func (srv *productAdminService) DeleteCategory(ctx context.Context, id string) error {
	if id == "" {
		return fieldError("id", "category id is required")
	}

	_, err := query.Mutate(ctx, srv.queries, query.Mutation[string, struct{}]{
		Name: "category-delete",
		Do: func(ctx context.Context, id string) (struct{}, error) {
			return struct{}{}, srv.categoryRepo.Delete(ctx, id)
		},
		Invalidate: func(string, struct{}) []query.Key { return categoryKeys() },
	}, id)

	return err
}

func (srv *productAdminService) writeCategory(
	ctx context.Context,
	name, id, categoryName string,
	do func(ctx context.Context, id, name string) (*entity.Category, error),
) (*entity.Category, error) {
	categoryName = strings.TrimSpace(categoryName)
	if categoryName == "" {
		return nil, fieldError("name", "name is required")
	}

	return query.Mutate(ctx, srv.queries, query.Mutation[string, *entity.Category]{
		Name: name,
		Do: func(ctx context.Context, categoryName string) (*entity.Category, error) {
			return do(ctx, id, categoryName)
		},
		Invalidate: func(string, *entity.Category) []query.Key { return categoryKeys() },
	}, categoryName)
}

// categoryKeys covers product lists too, since products embed category names.
func categoryKeys() []query.Key {
	return []query.Key{query.K(resourceCategories), query.K(resourceProducts), query.K(resourceProduct)}
}

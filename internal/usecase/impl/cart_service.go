package impl

import (
	"context"
	"log/slog"

	"storefront/config"
	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/query"
	"storefront/internal/session"
	"storefront/internal/usecase"

	"github.com/google/uuid"
)

// optimisticItemPrefix marks cart lines that only exist until the backend answers.
const optimisticItemPrefix = "optimistic-"

// cartService implements the CartUsecase interface.
type cartService struct {
	cartRepo repository.CartRepository
	store    *session.Store
	queries  *query.Client
	coupons  usecase.CouponUsecase
	cache    config.CacheConfig
	logger   *slog.Logger
}

// NewCartService is the constructor for cartService.
func NewCartService(
	cartRepo repository.CartRepository,
	store *session.Store,
	queries *query.Client,
	coupons usecase.CouponUsecase,
	cache config.CacheConfig,
	logger *slog.Logger,
) usecase.CartUsecase {
	return &cartService{
		cartRepo: cartRepo,
		store:    store,
		queries:  queries,
		coupons:  coupons,
		cache:    cache,
		logger:   logger,
	}
}

func (srv *cartService) Cart(ctx context.Context) query.Result[entity.Cart] {
	scope := srv.store.Scope()

	return query.Fetch(ctx, srv.queries, query.Query[entity.Cart]{
		Key:       cartKey(scope),
		StaleTime: srv.cache.Cart,
		Enabled:   srv.store.Resolved,
		Fetch: func(ctx context.Context) (entity.Cart, error) {
			cart, err := srv.cartRepo.Get(ctx, scope)
			if err != nil {
				return entity.Cart{}, err
			}

			return *cart, nil
		},
		Stored: func(cart entity.Cart) {
			srv.syncView(scope, &cart)
		},
	})
}

func (srv *cartService) Summary(ctx context.Context) query.Result[entity.CartSummary] {
	scope := srv.store.Scope()
	codes := summaryCodes(srv.coupons.Codes())
	cart := cartKey(scope)

	return query.Fetch(ctx, srv.queries, query.Query[entity.CartSummary]{
		Key:       summaryKey(scope, codes),
		StaleTime: srv.cache.CartSummary,
		Enabled: func() bool {
			return srv.store.Resolved() && query.Peek[entity.Cart](srv.queries, cart).HasData
		},
		Fetch: func(ctx context.Context) (entity.CartSummary, error) {
			summary, err := srv.cartRepo.Summary(ctx, scope, codes)
			if err != nil {
				return entity.CartSummary{}, err
			}

			return *summary, nil
		},
	})
}

func (srv *cartService) Add(ctx context.Context, input usecase.AddToCartInput) (*entity.Cart, error) {
	if input.Product.ID == "" {
		return nil, fieldError("productId", "product is required")
	}
	if input.Quantity <= 0 {
		return nil, fieldError("quantity", "quantity must be at least 1")
	}

	scope := srv.store.Scope()
	key := cartKey(scope)

	return query.Mutate(ctx, srv.queries, query.Mutation[usecase.AddToCartInput, *entity.Cart]{
		Name: "cart-add",
		Do: func(ctx context.Context, in usecase.AddToCartInput) (*entity.Cart, error) {
			return srv.cartRepo.Add(ctx, scope, in.Product.ID, in.Quantity)
		},
		Snapshot: func(usecase.AddToCartInput) []query.Key { return []query.Key{key} },
		Optimistic: func(c *query.Client, in usecase.AddToCartInput) {
			// Without a loaded cart there is nothing to merge into.
			if !query.Peek[entity.Cart](c, key).HasData {
				return
			}
			query.SetData(c, key, func(current entity.Cart, _ bool) entity.Cart {
				return current.Merge(entity.CartItem{
					ItemID:   optimisticItemPrefix + uuid.NewString(),
					Product:  in.Product,
					Quantity: in.Quantity,
				})
			})
		},
		Invalidate: func(usecase.AddToCartInput, *entity.Cart) []query.Key { return cartKeys(scope) },
		OnSuccess: func(_ context.Context, _ usecase.AddToCartInput, cart *entity.Cart) {
			srv.settle(scope, cart)
		},
	}, input)
}

type quantityChange struct {
	productID string
	quantity  int
}

func (srv *cartService) UpdateQuantity(ctx context.Context, productID string, quantity int) (*entity.Cart, error) {
	if productID == "" {
		return nil, fieldError("productId", "product is required")
	}
	if quantity <= 0 {
		return nil, fieldError("quantity", "quantity must be at least 1")
	}

	scope := srv.store.Scope()

	return query.Mutate(ctx, srv.queries, query.Mutation[quantityChange, *entity.Cart]{
		Name: "cart-update",
		Do: func(ctx context.Context, in quantityChange) (*entity.Cart, error) {
			return srv.cartRepo.UpdateQuantity(ctx, scope, in.productID, in.quantity)
		},
		Invalidate: func(quantityChange, *entity.Cart) []query.Key { return cartKeys(scope) },
		OnSuccess: func(_ context.Context, _ quantityChange, cart *entity.Cart) {
			srv.settle(scope, cart)
		},
	}, quantityChange{productID: productID, quantity: quantity})
}

func (srv *cartService) Remove(ctx context.Context, productID string) (*entity.Cart, error) {
	if productID == "" {
		return nil, fieldError("productId", "product is required")
	}

	scope := srv.store.Scope()

	return query.Mutate(ctx, srv.queries, query.Mutation[string, *entity.Cart]{
		Name: "cart-remove",
		Do: func(ctx context.Context, productID string) (*entity.Cart, error) {
			return srv.cartRepo.Remove(ctx, scope, productID)
		},
		Invalidate: func(string, *entity.Cart) []query.Key { return cartKeys(scope) },
		OnSuccess: func(_ context.Context, _ string, cart *entity.Cart) {
			srv.settle(scope, cart)
		},
	}, productID)
}

func (srv *cartService) Clear(ctx context.Context) error {
	scope := srv.store.Scope()

	_, err := query.Mutate(ctx, srv.queries, query.Mutation[string, struct{}]{
		Name: "cart-clear",
		Do: func(ctx context.Context, scope string) (struct{}, error) {
			return struct{}{}, srv.cartRepo.Clear(ctx, scope)
		},
		Invalidate: func(string, struct{}) []query.Key { return cartKeys(scope) },
		OnSuccess: func(context.Context, string, struct{}) {
			if srv.store.Scope() == scope {
				srv.store.ResetCart()
			}
			srv.settle(scope, &entity.Cart{Items: []entity.CartItem{}})
		},
	}, scope)
	if err != nil {
		return err
	}

	loggerFor(ctx, srv.logger).Debug("Cart cleared", slog.String("scope", scope))

	return nil
}

// settle records the cart the backend returned from a write. The entry stays
// invalidated, so the next read still refetches.
func (srv *cartService) settle(scope string, cart *entity.Cart) {
	if cart == nil {
		return
	}
	query.SetData(srv.queries, cartKey(scope), func(entity.Cart, bool) entity.Cart { return *cart })
	srv.syncView(scope, cart)
}

// syncView pushes the cart into the session store unless the caller changed identity meanwhile.
func (srv *cartService) syncView(scope string, cart *entity.Cart) {
	if cart == nil || srv.store.Scope() != scope {
		return
	}
	srv.store.SetCart(*cart)
}

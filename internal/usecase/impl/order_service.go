package impl

import (
	"context"
	"log/slog"

	"storefront/config"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/query"
	"storefront/internal/session"
	"storefront/internal/usecase"

	"github.com/pkg/errors"
)

const mutationCheckout = "checkout"

// orderService implements the OrderUsecase interface.
type orderService struct {
	orderRepo repository.OrderRepository
	store     *session.Store
	queries   *query.Client
	coupons   usecase.CouponUsecase
	qrCodes   service.QRCodeService
	cache     config.CacheConfig
	logger    *slog.Logger
}

// NewOrderService is the constructor for orderService.
func NewOrderService(
	orderRepo repository.OrderRepository,
	store *session.Store,
	queries *query.Client,
	coupons usecase.CouponUsecase,
	qrCodes service.QRCodeService,
	cache config.CacheConfig,
	logger *slog.Logger,
) usecase.OrderUsecase {
	return &orderService{
		orderRepo: orderRepo,
		store:     store,
		queries:   queries,
		coupons:   coupons,
		qrCodes:   qrCodes,
		cache:     cache,
		logger:    logger,
	}
}

func (srv *orderService) log(ctx context.Context) *slog.Logger {
	return loggerFor(ctx, srv.logger)
}

func ordersKey(scope string, parts ...any) query.Key {
	return append(query.K(resourceOrders, scope), parts...)
}

func (srv *orderService) Checkout(ctx context.Context, address entity.ShippingAddress) (*entity.Order, error) {
	if _, err := requireUser(srv.store); err != nil {
		return nil, err
	}

	scope := srv.store.Scope()
	req := entity.CheckoutRequest{
		CouponCodes:     srv.coupons.Codes(),
		ShippingAddress: address,
	}

	order, err := query.Mutate(ctx, srv.queries, query.Mutation[entity.CheckoutRequest, *entity.Order]{
		Name:      mutationCheckout,
		Exclusive: true,
		Do:        srv.orderRepo.Checkout,
		Invalidate: func(entity.CheckoutRequest, *entity.Order) []query.Key {
			return append(cartKeys(scope), ordersKey(scope))
		},
		OnSuccess: func(context.Context, entity.CheckoutRequest, *entity.Order) {
			if srv.store.Scope() == scope {
				srv.store.ResetCart()
			}
			srv.coupons.Reset()
		},
	}, req)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.WithStack(domainerrors.ErrMalformedResponse.WithDetails("checkout without order"))
	}

	srv.log(ctx).Info("Order placed",
		slog.String("order_id", order.ID),
		slog.String("final_amount", order.FinalAmount.String()),
		slog.Int("coupons", len(req.CouponCodes)))

	return order, nil
}

func (srv *orderService) MyOrders(ctx context.Context) query.Result[[]entity.Order] {
	return query.Fetch(ctx, srv.queries, query.Query[[]entity.Order]{
		Key:       ordersKey(srv.store.Scope(), "mine"),
		StaleTime: srv.cache.Orders,
		Enabled:   authenticated(srv.store),
		Fetch:     srv.orderRepo.ListMine,
	})
}

func (srv *orderService) Order(ctx context.Context, id string) query.Result[entity.Order] {
	return query.Fetch(ctx, srv.queries, query.Query[entity.Order]{
		Key:       ordersKey(srv.store.Scope(), "detail", id),
		StaleTime: srv.cache.Orders,
		Enabled: func() bool {
			return id != "" && srv.store.IsAuthenticated()
		},
		Fetch: func(ctx context.Context) (entity.Order, error) {
			order, err := srv.orderRepo.Get(ctx, id)
			if err != nil {
				return entity.Order{}, err
			}

			return *order, nil
		},
	})
}

func (srv *orderService) Cancel(ctx context.Context, id string) (*entity.Order, error) {
	return srv.transition(ctx, "order-cancel", id, srv.orderRepo.Cancel)
}

func (srv *orderService) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) (*entity.Order, error) {
	if !status.IsValid() {
		return nil, fieldError("status", "unknown order status")
	}

	return srv.transition(ctx, "order-status", id, func(ctx context.Context, id string) (*entity.Order, error) {
		return srv.orderRepo.UpdateStatus(ctx, id, status)
	})
}

// transition requests a status change. The server decides whether it is allowed.
func (srv *orderService) transition(
	ctx context.Context,
	name, id string,
	do func(ctx context.Context, id string) (*entity.Order, error),
) (*entity.Order, error) {
	if id == "" {
		return nil, fieldError("id", "order id is required")
	}

	scope := srv.store.Scope()
	order, err := query.Mutate(ctx, srv.queries, query.Mutation[string, *entity.Order]{
		Name:       name,
		Do:         do,
		Invalidate: func(string, *entity.Order) []query.Key { return []query.Key{ordersKey(scope)} },
		OnSuccess: func(_ context.Context, id string, order *entity.Order) {
			if order != nil {
				query.SetData(srv.queries, ordersKey(scope, "detail", id), func(entity.Order, bool) entity.Order { return *order })
			}
		},
	}, id)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Order status changed", slog.String("order_id", id), slog.String("mutation", name))

	return order, nil
}

func (srv *orderService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fieldError("id", "order id is required")
	}

	scope := srv.store.Scope()
	_, err := query.Mutate(ctx, srv.queries, query.Mutation[string, struct{}]{
		Name: "order-delete",
		Do: func(ctx context.Context, id string) (struct{}, error) {
			return struct{}{}, srv.orderRepo.Delete(ctx, id)
		},
		Invalidate: func(string, struct{}) []query.Key { return []query.Key{ordersKey(scope)} },
		OnSuccess: func(_ context.Context, id string, _ struct{}) {
			srv.queries.Remove(ordersKey(scope, "detail", id))
		},
	}, id)

	return err
}

func (srv *orderService) AllOrders(ctx context.Context) query.Result[[]entity.Order] {
	return query.Fetch(ctx, srv.queries, query.Query[[]entity.Order]{
		Key:       ordersKey(srv.store.Scope(), "all"),
		StaleTime: srv.cache.Orders,
		Enabled:   authenticated(srv.store),
		Fetch:     srv.orderRepo.ListAll,
	})
}

func (srv *orderService) TrackingQR(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, fieldError("id", "order id is required")
	}
	if _, err := requireUser(srv.store); err != nil {
		return nil, err
	}

	// Reading the order first keeps codes to orders the caller may see.
	res := srv.Order(ctx, id)
	if res.IsError && !res.HasData {
		return nil, res.Err
	}
	if !res.HasData {
		return nil, domainerrors.ErrNotFound.WithDetails("order " + id)
	}

	png, err := srv.qrCodes.GenerateOrderQR(id)
	if err != nil {
		return nil, errors.Wrap(err, "generate order qr code")
	}

	return png, nil
}

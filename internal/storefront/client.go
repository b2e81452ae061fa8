// Package storefront assembles one SDK client per caller: its backend
// connection, session store, query cache and the use cases on top of them.
package storefront

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"storefront/config"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/service"
	"storefront/internal/infra/api"
	"storefront/internal/query"
	"storefront/internal/session"
	"storefront/internal/usecase"
	"storefront/internal/usecase/impl"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const readRetryBackoff = 200 * time.Millisecond

// Deps are the process-wide collaborators every client shares.
type Deps struct {
	Config    *config.Config
	Logger    *slog.Logger
	Shared    query.SharedStore
	Inspector service.TokenInspector
	QRCodes   service.QRCodeService
	// Transport overrides the backend transport, mainly for tests.
	Transport http.RoundTripper
}

// Client is the SDK surface of one visitor.
type Client struct {
	ID      uuid.UUID
	API     *api.Client
	Session *session.Store
	Queries *query.Client

	Auth        usecase.AuthUsecase
	Catalog     usecase.CatalogUsecase
	Cart        usecase.CartUsecase
	Coupons     usecase.CouponUsecase
	Orders      usecase.OrderUsecase
	Products    usecase.ProductAdminUsecase
	CouponAdmin usecase.CouponAdminUsecase
	Users       usecase.UserAdminUsecase

	lastSeen atomic.Int64
	logger   *slog.Logger
	unwatch  func()

	// persistMu serializes saves; fingerprint is the last saved credential state.
	persistMu   sync.Mutex
	fingerprint string
}

// NewClient wires a fresh, unresolved client.
func NewClient(id uuid.UUID, deps Deps) (*Client, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("visitor_id", id.String()))

	store := session.NewStore()
	c := &Client{ID: id, Session: store, logger: logger, fingerprint: fingerprint(nil, "")}

	apiClient, err := api.NewClient(api.Options{
		BaseURL:   deps.Config.API.BaseURL,
		Timeout:   deps.Config.API.Timeout,
		UserAgent: deps.Config.API.UserAgent,
		Tokens: []api.TokenSource{
			api.TokenFunc(store.AccessToken),
			api.TokenFunc(c.fallbackToken),
		},
		Transport: deps.Transport,
		Logger:    logger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create api client")
	}
	c.API = apiClient

	opts := []query.Option{
		query.WithRetry(deps.Config.Cache.ReadRetries, readRetryBackoff),
		query.WithErrorHook(c.onError),
	}
	if deps.Shared != nil {
		opts = append(opts, query.WithSharedStore(deps.Shared))
	}
	c.Queries = query.NewClient(logger, opts...)

	cache := deps.Config.Cache
	authRepo := api.NewAuthRepository(apiClient)
	cartRepo := api.NewCartRepository(apiClient)
	couponRepo := api.NewCouponRepository(apiClient)
	orderRepo := api.NewOrderRepository(apiClient)
	productRepo := api.NewProductRepository(apiClient)
	categoryRepo := api.NewCategoryRepository(apiClient)
	reviewRepo := api.NewReviewRepository(apiClient)
	userRepo := api.NewUserRepository(apiClient)

	c.Coupons = impl.NewCouponService(couponRepo, c.Queries, logger)
	c.Auth = impl.NewAuthService(authRepo, store, c.Queries, c.Coupons, deps.Inspector, logger)
	c.Catalog = impl.NewCatalogService(productRepo, categoryRepo, reviewRepo, store, c.Queries, cache, logger)
	c.Cart = impl.NewCartService(cartRepo, store, c.Queries, c.Coupons, cache, logger)
	c.Orders = impl.NewOrderService(orderRepo, store, c.Queries, c.Coupons, deps.QRCodes, cache, logger)
	c.Products = impl.NewProductAdminService(productRepo, categoryRepo, store, c.Queries, cache, logger)
	c.CouponAdmin = impl.NewCouponAdminService(couponRepo, store, c.Queries, cache, logger)
	c.Users = impl.NewUserAdminService(userRepo, store, c.Queries, cache, logger)

	c.unwatch = c.watchSession()
	c.Touch(time.Now())

	return c, nil
}

// watchSession logs every status transition of the session.
func (c *Client) watchSession() func() {
	var mu sync.Mutex
	last := c.Session.Status()

	return c.Session.Subscribe(func(sess entity.Session) {
		mu.Lock()
		prev := last
		last = sess.Status
		mu.Unlock()

		if prev == sess.Status {
			return
		}
		c.logger.Debug("Session status changed",
			slog.String("from", string(prev)),
			slog.String("to", string(sess.Status)),
			slog.String("scope", sess.Scope()),
		)
	})
}

func (c *Client) fallbackToken() string {
	if c.Auth == nil {
		return ""
	}

	return c.Auth.FallbackToken()
}

// onError expires the session whenever the backend rejects the credential.
func (c *Client) onError(ctx context.Context, key query.Key, err error) {
	if !domainerrors.IsKind(err, domainerrors.KindUnauthorized) {
		return
	}

	c.logger.Debug("Backend rejected credential", slog.String("key", key.String()))
	c.Auth.Expire(ctx)
}

// Touch records activity at now.
func (c *Client) Touch(now time.Time) {
	c.lastSeen.Store(now.UnixNano())
}

// LastSeen is the time of the latest Touch.
func (c *Client) LastSeen() time.Time {
	return time.Unix(0, c.lastSeen.Load())
}

// Token is the credential worth persisting: the live access token, or the
// fallback token while the session is still unresolved.
func (c *Client) Token() string {
	if token := c.Session.AccessToken(); token != "" {
		return token
	}
	if c.Session.Status() == entity.SessionUnresolved || c.Session.Status() == entity.SessionResolving {
		return c.fallbackToken()
	}

	return ""
}

// Close drops the client's cached entries and stops watching its session.
func (c *Client) Close() {
	c.unwatch()
	c.Queries.Clear()
}

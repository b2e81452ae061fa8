package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"storefront/config"
	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/storefront"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// keyClient is the echo.Context key of the visitor's storefront client.
const keyClient = "storefront_client"

// SetClient stores the visitor's client in echo.Context.
func SetClient(c echo.Context, client *storefront.Client) {
	c.Set(keyClient, client)
}

// GetClient returns the visitor's client, or nil outside the visitor middleware.
func GetClient(c echo.Context) *storefront.Client {
	client, _ := c.Get(keyClient).(*storefront.Client)

	return client
}

// VisitorMiddlewareParams holds dependencies for VisitorMiddleware, injected by Fx.
type VisitorMiddlewareParams struct {
	fx.In

	Registry *storefront.Registry
	Config   *config.Config
	Logger   *slog.Logger
}

// VisitorMiddleware binds each request to the visitor's storefront client.
// The visitor id travels in a cookie; the client resolves its session before
// the handler runs and its credentials are persisted afterwards.
type VisitorMiddleware struct {
	registry *storefront.Registry
	cfg      config.VisitorConfig
	logger   *slog.Logger
}

func NewVisitorMiddleware(params VisitorMiddlewareParams) *VisitorMiddleware {
	return &VisitorMiddleware{
		registry: params.Registry,
		cfg:      params.Config.Visitor,
		logger:   params.Logger,
	}
}

// Attach loads the client and resolves its session.
func (m *VisitorMiddleware) Attach(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		visitorID, known := m.visitorID(c)
		if !known {
			c.SetCookie(m.cookie(visitorID))
		}

		ctx := c.Request().Context()
		client, err := m.registry.Get(ctx, visitorID)
		if err != nil {
			return errors.Wrap(err, "load visitor")
		}

		logger := deliverycontext.GetLoggerOrDefault(ctx, m.logger).With(slog.String("visitor_id", visitorID.String()))
		ctx = deliverycontext.WithLogger(ctx, logger)
		c.SetRequest(c.Request().WithContext(ctx))
		SetClient(c, client)

		client.Auth.Resolve(ctx)

		err = next(c)

		if persistErr := m.registry.Persist(context.WithoutCancel(ctx), client); persistErr != nil {
			logger.Warn("Failed to persist visitor credentials", slog.Any("error", persistErr))
		}

		return err
	}
}

func (m *VisitorMiddleware) visitorID(c echo.Context) (uuid.UUID, bool) {
	cookie, err := c.Cookie(m.cfg.CookieName)
	if err == nil {
		if id, parseErr := uuid.Parse(cookie.Value); parseErr == nil {
			return id, true
		}
	}

	return uuid.New(), false
}

func (m *VisitorMiddleware) cookie(visitorID uuid.UUID) *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    visitorID.String(),
		Path:     "/",
		MaxAge:   int(m.cfg.Retention.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

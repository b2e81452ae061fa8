package handler

import (
	"net/http"

	"storefront/config"
	"storefront/internal/delivery/api/response"
	"storefront/internal/storefront"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// HealthHandlerParams holds dependencies for HealthHandler, injected by Fx.
type HealthHandlerParams struct {
	fx.In

	Registry *storefront.Registry
	Config   *config.Config
}

// HealthHandler reports liveness and the number of live visitor clients.
type HealthHandler struct {
	registry *storefront.Registry
	service  string
}

func NewHealthHandler(params HealthHandlerParams) *HealthHandler {
	return &HealthHandler{
		registry: params.Registry,
		service:  params.Config.Env.ServiceName,
	}
}

func (h *HealthHandler) Check(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]any{
		"status":   "ok",
		"service":  h.service,
		"visitors": h.registry.Len(),
	})
}

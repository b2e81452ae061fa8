package handler

import (
	"log/slog"
	"net/http"

	"storefront/internal/delivery/api/response"
	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	Logger *slog.Logger
}

// AuthHandler exposes the visitor's session and the sign in flows.
type AuthHandler struct {
	logger *slog.Logger
}

func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{logger: params.Logger}
}

// LoginRequest represents the request body for signing in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents the request body for signing up
type RegisterRequest struct {
	Fullname string `json:"fullname" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Session returns the resolved session, including the cart view.
func (h *AuthHandler) Session(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, client.Session.Snapshot())
}

// Profile returns the signed in user.
func (h *AuthHandler) Profile(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	user := client.Session.User()
	if user == nil {
		return domainerrors.ErrNotAuthenticated
	}

	return response.Success(c, http.StatusOK, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := client.Auth.Login(ctx, entity.Credentials{Email: req.Email, Password: req.Password}); err != nil {
		return err
	}

	deliverycontext.GetLoggerOrDefault(ctx, h.logger).Info("Visitor signed in")

	return response.Success(c, http.StatusOK, client.Session.Snapshot())
}

func (h *AuthHandler) Register(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	var req RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	registration := entity.Registration{Fullname: req.Fullname, Email: req.Email, Password: req.Password}
	if _, err := client.Auth.Register(c.Request().Context(), registration); err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, client.Session.Snapshot())
}

// Logout clears the local session even when the backend revocation fails.
func (h *AuthHandler) Logout(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	if err := client.Auth.Logout(c.Request().Context()); err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, client.Session.Snapshot())
}

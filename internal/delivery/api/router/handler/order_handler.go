package handler

import (
	"log/slog"
	"net/http"

	"storefront/internal/delivery/api/response"
	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// OrderHandlerParams holds dependencies for OrderHandler, injected by Fx.
type OrderHandlerParams struct {
	fx.In

	Logger *slog.Logger
}

// OrderHandler serves checkout and the buyer's own orders.
type OrderHandler struct {
	logger *slog.Logger
}

func NewOrderHandler(params OrderHandlerParams) *OrderHandler {
	return &OrderHandler{logger: params.Logger}
}

// CheckoutRequest represents the request body for placing an order
type CheckoutRequest struct {
	ShippingAddress ShippingAddressRequest `json:"shippingAddress"`
}

// ShippingAddressRequest is the address collected at checkout
type ShippingAddressRequest struct {
	FullName   string `json:"fullName" validate:"required,max=100"`
	Street     string `json:"street" validate:"required,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=100"`
	Phone      string `json:"phone" validate:"omitempty,max=32"`
}

// Checkout places an order for the cart with the accepted coupons.
func (h *OrderHandler) Checkout(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	var req CheckoutRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	addr := req.ShippingAddress
	order, err := client.Orders.Checkout(ctx, entity.ShippingAddress{
		FullName:   addr.FullName,
		Street:     addr.Street,
		City:       addr.City,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
		Phone:      addr.Phone,
	})
	if err != nil {
		return err
	}

	deliverycontext.GetLoggerOrDefault(ctx, h.logger).Info("Order placed", slog.String("order_id", order.ID))

	return response.Success(c, http.StatusCreated, order)
}

func (h *OrderHandler) MyOrders(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	return response.Query(c, client.Orders.MyOrders(c.Request().Context()))
}

func (h *OrderHandler) Order(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	return response.Query(c, client.Orders.Order(c.Request().Context(), c.Param("id")))
}

func (h *OrderHandler) Cancel(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	id, err := param(c, "id")
	if err != nil {
		return err
	}

	order, err := client.Orders.Cancel(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, order)
}

// TrackingQR renders the order's tracking link as a PNG.
func (h *OrderHandler) TrackingQR(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	id, err := param(c, "id")
	if err != nil {
		return err
	}

	png, err := client.Orders.TrackingQR(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return response.PNG(c, png)
}

package handler

import (
	"net/http"

	"storefront/internal/delivery/api/response"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/storefront"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// CartHandler serves the cart and the coupon bag.
type CartHandler struct{}

func NewCartHandler() *CartHandler {
	return &CartHandler{}
}

// AddItemRequest represents the request body for adding a product to the cart
type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,gte=1,lte=99"`
}

// UpdateItemRequest represents the request body for changing a line quantity
type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1,lte=99"`
}

// ApplyCouponRequest represents the request body for applying a coupon
type ApplyCouponRequest struct {
	Code string `json:"code" validate:"required,max=32"`
}

func (h *CartHandler) Cart(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	return response.Query(c, client.Cart.Cart(c.Request().Context()))
}

// Summary loads the cart first so the summary read is enabled.
func (h *CartHandler) Summary(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if res := client.Cart.Cart(ctx); res.IsError && !res.HasData {
		return errors.WithStack(res.Err)
	}

	return response.Query(c, client.Cart.Summary(ctx))
}

// AddItem projects the catalog product into the cart line shown until the
// backend answers.
func (h *CartHandler) AddItem(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	var req AddItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	ctx := c.Request().Context()
	product := client.Catalog.Product(ctx, req.ProductID)
	if !product.HasData {
		if product.Err == nil {
			return domainerrors.ErrNotFound.WithMessage("product not found")
		}

		return errors.WithStack(product.Err)
	}

	cart, err := client.Cart.Add(ctx, usecase.AddToCartInput{
		Product:  product.Data.CartProduct(),
		Quantity: req.Quantity,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, cart)
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	productID, err := param(c, "productId")
	if err != nil {
		return err
	}

	var req UpdateItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	cart, err := client.Cart.UpdateQuantity(c.Request().Context(), productID, req.Quantity)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	productID, err := param(c, "productId")
	if err != nil {
		return err
	}

	cart, err := client.Cart.Remove(c.Request().Context(), productID)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, cart)
}

func (h *CartHandler) Clear(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	if err := client.Cart.Clear(c.Request().Context()); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) Coupons(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, client.Coupons.State())
}

// ApplyCoupon validates the code against the priced cart total, falling back
// to the client-side subtotal while no summary is available.
func (h *CartHandler) ApplyCoupon(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	var req ApplyCouponRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	coupon, err := client.Coupons.Apply(ctx, req.Code, purchaseAmount(c, client))
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"coupon": coupon,
		"state":  client.Coupons.State(),
	})
}

func (h *CartHandler) RemoveCoupon(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	code, err := param(c, "code")
	if err != nil {
		return err
	}
	client.Coupons.Remove(code)

	return response.Success(c, http.StatusOK, client.Coupons.State())
}

func purchaseAmount(c echo.Context, client *storefront.Client) decimal.Decimal {
	ctx := c.Request().Context()

	cart := client.Cart.Cart(ctx)
	if !cart.HasData {
		return decimal.Zero
	}
	if summary := client.Cart.Summary(ctx); summary.HasData {
		return summary.Data.Total
	}

	return cart.Data.Subtotal()
}

package handler

import (
	"net/http"

	"storefront/internal/delivery/api/response"
	"storefront/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

// AdminHandler serves categories, all orders and user administration.
type AdminHandler struct{}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{}
}

// CategoryRequest represents the request body for category writes
type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// OrderStatusRequest represents the request body for an order transition
type OrderStatusRequest struct {
	Status entity.OrderStatus `json:"status" validate:"required,oneof=pending shipped delivered cancelled"`
}

// RoleRequest represents the request body for changing a user's role
type RoleRequest struct {
	Role entity.Role `json:"role" validate:"required,oneof=user seller admin"`
}

func (h *AdminHandler) CreateCategory(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	var req CategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	category, err := client.Products.CreateCategory(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, category)
}

func (h *AdminHandler) UpdateCategory(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	id, err := param(c, "id")
	if err != nil {
		return err
	}

	var req CategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	category, err := client.Products.UpdateCategory(c.Request().Context(), id, req.Name)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, category)
}

func (h *AdminHandler) DeleteCategory(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	id, err := param(c, "id")
	if err != nil {
		return err
	}

	if err := client.Products.DeleteCategory(c.Request().Context(), id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) Orders(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	return response.Query(c, client.Orders.AllOrders(c.Request().Context()))
}

func (h *AdminHandler) UpdateOrderStatus(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	id, err := param(c, "id")
	if err != nil {
		return err
	}

	var req OrderStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	order, err := client.Orders.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, order)
}

func (h *AdminHandler) DeleteOrder(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	id, err := param(c, "id")
	if err != nil {
		return err
	}

	if err := client.Orders.Delete(c.Request().Context(), id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) Users(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	return response.Query(c, client.Users.Users(c.Request().Context(), page, limit))
}

func (h *AdminHandler) UpdateRole(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	id, err := param(c, "id")
	if err != nil {
		return err
	}

	var req RoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := client.Users.UpdateRole(c.Request().Context(), id, req.Role)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	id, err := param(c, "id")
	if err != nil {
		return err
	}

	if err := client.Users.Delete(c.Request().Context(), id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

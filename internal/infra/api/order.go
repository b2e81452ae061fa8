package api

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
)

// orderGateway reads every order endpoint through the {data} envelope.
type orderGateway struct {
	client *Client
}

func NewOrderRepository(client *Client) repository.OrderRepository {
	return &orderGateway{client: client}
}

type statusRequest struct {
	Status entity.OrderStatus `json:"status"`
}

func orderPath(id string) string {
	return "/orders/" + url.PathEscape(id)
}

func (g *orderGateway) Checkout(ctx context.Context, checkout entity.CheckoutRequest) (*entity.Order, error) {
	checkout.CouponCodes = nonNil(checkout.CouponCodes)

	return g.one(ctx, http.MethodPost, "/orders", checkout)
}

func (g *orderGateway) ListMine(ctx context.Context) ([]entity.Order, error) {
	return g.list(ctx, "/orders/my")
}

func (g *orderGateway) Get(ctx context.Context, id string) (*entity.Order, error) {
	return g.one(ctx, http.MethodGet, orderPath(id), nil)
}

func (g *orderGateway) Cancel(ctx context.Context, id string) (*entity.Order, error) {
	return g.one(ctx, http.MethodPatch, orderPath(id)+"/cancel", nil)
}

func (g *orderGateway) ListAll(ctx context.Context) ([]entity.Order, error) {
	return g.list(ctx, "/orders")
}

func (g *orderGateway) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) (*entity.Order, error) {
	return g.one(ctx, http.MethodPatch, orderPath(id)+"/status", statusRequest{Status: status})
}

func (g *orderGateway) Delete(ctx context.Context, id string) error {
	return g.client.do(ctx, call{method: http.MethodDelete, path: orderPath(id)}, nil)
}

func (g *orderGateway) one(ctx context.Context, method, path string, payload any) (*entity.Order, error) {
	req, err := jsonCall(method, path, payload)
	if err != nil {
		return nil, err
	}

	var out dataResponse[entity.Order]
	if err := g.client.do(ctx, req, &out); err != nil {
		return nil, err
	}

	return unwrap(out.Data, "order")
}

func (g *orderGateway) list(ctx context.Context, path string) ([]entity.Order, error) {
	var out listResponse[entity.Order]
	if err := g.client.do(ctx, call{method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}

	return nonNil(out.Data), nil
}

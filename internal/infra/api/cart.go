package api

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
)

type cartGateway struct {
	client *Client
}

func NewCartRepository(client *Client) repository.CartRepository {
	return &cartGateway{client: client}
}

type cartLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type summaryRequest struct {
	CouponCodes []string `json:"couponCodes"`
}

// basePath routes guests to the cookie-identified guest cart.
func basePath(scope string) string {
	if scope == entity.GuestScope {
		return "/guest-cart"
	}

	return "/cart"
}

func (g *cartGateway) Get(ctx context.Context, scope string) (*entity.Cart, error) {
	return g.cartCall(ctx, call{method: http.MethodGet, path: basePath(scope)})
}

func (g *cartGateway) Add(ctx context.Context, scope, productID string, quantity int) (*entity.Cart, error) {
	req, err := jsonCall(http.MethodPost, basePath(scope), cartLine{ProductID: productID, Quantity: quantity})
	if err != nil {
		return nil, err
	}

	return g.cartCall(ctx, req)
}

func (g *cartGateway) UpdateQuantity(ctx context.Context, scope, productID string, quantity int) (*entity.Cart, error) {
	req, err := jsonCall(http.MethodPut, basePath(scope), cartLine{ProductID: productID, Quantity: quantity})
	if err != nil {
		return nil, err
	}

	return g.cartCall(ctx, req)
}

func (g *cartGateway) Remove(ctx context.Context, scope, productID string) (*entity.Cart, error) {
	return g.cartCall(ctx, call{method: http.MethodDelete, path: basePath(scope) + "/" + url.PathEscape(productID)})
}

func (g *cartGateway) Clear(ctx context.Context, scope string) error {
	return g.client.do(ctx, call{method: http.MethodDelete, path: basePath(scope)}, nil)
}

func (g *cartGateway) Summary(ctx context.Context, scope string, couponCodes []string) (*entity.CartSummary, error) {
	req, err := jsonCall(http.MethodPost, basePath(scope)+"/summary", summaryRequest{CouponCodes: nonNil(couponCodes)})
	if err != nil {
		return nil, err
	}

	var out summaryResponse
	if err := g.client.do(ctx, req, &out); err != nil {
		return nil, err
	}

	return unwrap(out.Data.Summary, "summary")
}

func (g *cartGateway) cartCall(ctx context.Context, req call) (*entity.Cart, error) {
	var out cartResponse
	if err := g.client.do(ctx, req, &out); err != nil {
		return nil, err
	}

	return &entity.Cart{Items: nonNil(out.Data.Items)}, nil
}

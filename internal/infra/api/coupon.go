package api

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
)

type couponGateway struct {
	client *Client
}

func NewCouponRepository(client *Client) repository.CouponRepository {
	return &couponGateway{client: client}
}

type validateRequest struct {
	Code           string   `json:"code"`
	CouponCodes    []string `json:"couponCodes"`
	PurchaseAmount float64  `json:"purchaseAmount"`
}

func (g *couponGateway) Validate(ctx context.Context, v entity.CouponValidation) (*entity.Coupon, error) {
	req, err := jsonCall(http.MethodPost, "/coupons/validate", validateRequest{
		Code:           v.Code,
		CouponCodes:    nonNil(v.CouponCodes),
		PurchaseAmount: v.PurchaseAmount.InexactFloat64(),
	})
	if err != nil {
		return nil, err
	}

	var out dataResponse[entity.Coupon]
	if err := g.client.do(ctx, req, &out); err != nil {
		return nil, err
	}

	return unwrap(out.Data, "coupon")
}

func (g *couponGateway) List(ctx context.Context) ([]entity.Coupon, error) {
	var out listResponse[entity.Coupon]
	if err := g.client.do(ctx, call{method: http.MethodGet, path: "/coupons"}, &out); err != nil {
		return nil, err
	}

	return nonNil(out.Data), nil
}

func (g *couponGateway) Create(ctx context.Context, coupon entity.Coupon) (*entity.Coupon, error) {
	return g.write(ctx, http.MethodPost, "/coupons", coupon)
}

func (g *couponGateway) Update(ctx context.Context, id string, coupon entity.Coupon) (*entity.Coupon, error) {
	return g.write(ctx, http.MethodPut, "/coupons/"+url.PathEscape(id), coupon)
}

func (g *couponGateway) Delete(ctx context.Context, id string) error {
	return g.client.do(ctx, call{method: http.MethodDelete, path: "/coupons/" + url.PathEscape(id)}, nil)
}

func (g *couponGateway) write(ctx context.Context, method, path string, coupon entity.Coupon) (*entity.Coupon, error) {
	coupon.Code = entity.NormalizeCouponCode(coupon.Code)

	req, err := jsonCall(method, path, coupon)
	if err != nil {
		return nil, err
	}

	var out dataResponse[entity.Coupon]
	if err := g.client.do(ctx, req, &out); err != nil {
		return nil, err
	}

	return unwrap(out.Data, "coupon")
}

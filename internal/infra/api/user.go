package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
)

type userGateway struct {
	client *Client
}

func NewUserRepository(client *Client) repository.UserRepository {
	return &userGateway{client: client}
}

type roleRequest struct {
	Role entity.Role `json:"role"`
}

func (g *userGateway) List(ctx context.Context, page, limit int) (*entity.Page[entity.User], error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	var out pageResponse[entity.User]
	if err := g.client.do(ctx, call{method: http.MethodGet, path: "/users", query: params}, &out); err != nil {
		return nil, err
	}

	result, err := unwrap(out.Data, "users page")
	if err != nil {
		return nil, err
	}
	result.Items = nonNil(result.Items)

	return result, nil
}

func (g *userGateway) UpdateRole(ctx context.Context, id string, role entity.Role) (*entity.User, error) {
	req, err := jsonCall(http.MethodPut, "/users/"+url.PathEscape(id)+"/role", roleRequest{Role: role})
	if err != nil {
		return nil, err
	}

	var out dataResponse[entity.User]
	if err := g.client.do(ctx, req, &out); err != nil {
		return nil, err
	}

	return unwrap(out.Data, "user")
}

func (g *userGateway) Delete(ctx context.Context, id string) error {
	return g.client.do(ctx, call{method: http.MethodDelete, path: "/users/" + url.PathEscape(id)}, nil)
}

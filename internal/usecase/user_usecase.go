package usecase

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/query"
)

// UserAdminUsecase covers user administration.
type UserAdminUsecase interface {
	Users(ctx context.Context, page, limit int) query.Result[entity.Page[entity.User]]
	UpdateRole(ctx context.Context, id string, role entity.Role) (*entity.User, error)
	Delete(ctx context.Context, id string) error
}

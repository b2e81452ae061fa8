package repository

import (
	"context"

	"storefront/internal/domain/entity"
)

// UserRepository covers the user administration endpoints.
type UserRepository interface {
	List(ctx context.Context, page, limit int) (*entity.Page[entity.User], error)

	UpdateRole(ctx context.Context, id string, role entity.Role) (*entity.User, error)

	Delete(ctx context.Context, id string) error
}

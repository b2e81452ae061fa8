package impl

import (
	"context"
	"log/slog"
	"time"

	"storefront/config"
	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/query"
	"storefront/internal/session"
	"storefront/internal/usecase"
	"storefront/internal/util"
)

// userAdminService implements the UserAdminUsecase interface.
type userAdminService struct {
	userRepo  repository.UserRepository
	store     *session.Store
	queries   *query.Client
	staleTime time.Duration
	logger    *slog.Logger
}

// NewUserAdminService is the constructor for userAdminService.
func NewUserAdminService(
	userRepo repository.UserRepository,
	store *session.Store,
	queries *query.Client,
	cache config.CacheConfig,
	logger *slog.Logger,
) usecase.UserAdminUsecase {
	return &userAdminService{
		userRepo:  userRepo,
		store:     store,
		queries:   queries,
		staleTime: cache.Users,
		logger:    logger,
	}
}

func (srv *userAdminService) Users(ctx context.Context, page, limit int) query.Result[entity.Page[entity.User]] {
	page = max(page, 1)
	if limit <= 0 {
		limit = util.DefaultPageSize
	}

	return query.Fetch(ctx, srv.queries, query.Query[entity.Page[entity.User]]{
		Key:       query.K(resourceUsers, page, limit),
		StaleTime: srv.staleTime,
		Enabled:   authenticated(srv.store),
		Fetch: func(ctx context.Context) (entity.Page[entity.User], error) {
			users, err := srv.userRepo.List(ctx, page, limit)
			if err != nil {
				return entity.Page[entity.User]{}, err
			}

			return *users, nil
		},
	})
}

func (srv *userAdminService) UpdateRole(ctx context.Context, id string, role entity.Role) (*entity.User, error) {
	if id == "" {
		return nil, fieldError("id", "user id is required")
	}
	if !role.IsValid() {
		return nil, fieldError("role", "role must be user, seller or admin")
	}

	user, err := query.Mutate(ctx, srv.queries, query.Mutation[string, *entity.User]{
		Name: "user-role",
		Do: func(ctx context.Context, id string) (*entity.User, error) {
			return srv.userRepo.UpdateRole(ctx, id, role)
		},
		Invalidate: func(string, *entity.User) []query.Key { return []query.Key{query.K(resourceUsers)} },
	}, id)
	if err != nil {
		return nil, err
	}

	loggerFor(ctx, srv.logger).Info("User role changed", slog.String("user_id", id), slog.String("role", role.String()))

	return user, nil
}

func (srv *userAdminService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fieldError("id", "user id is required")
	}

	_, err := query.Mutate(ctx, srv.queries, query.Mutation[string, struct{}]{
		Name: "user-delete",
		Do: func(ctx context.Context, id string) (struct{}, error) {
			return struct{}{}, srv.userRepo.Delete(ctx, id)
		},
		Invalidate: func(string, struct{}) []query.Key { return []query.Key{query.K(resourceUsers)} },
	}, id)

	return err
}

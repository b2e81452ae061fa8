package impl

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"storefront/config"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/query"
	"storefront/internal/session"
	"storefront/internal/usecase"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const mutationCouponValidate = "coupon-validate"

// couponService implements the CouponUsecase interface.
type couponService struct {
	couponRepo repository.CouponRepository
	queries    *query.Client
	logger     *slog.Logger

	mu       sync.Mutex
	accepted []entity.Coupon
	pending  string
	lastErr  error
	// epoch counts resets; a validation started before one is void.
	epoch uint64
}

// NewCouponService is the constructor for couponService.
func NewCouponService(couponRepo repository.CouponRepository, queries *query.Client, logger *slog.Logger) usecase.CouponUsecase {
	return &couponService{
		couponRepo: couponRepo,
		queries:    queries,
		logger:     logger,
	}
}

func (srv *couponService) Apply(ctx context.Context, code string, purchaseAmount decimal.Decimal) (*entity.Coupon, error) {
	code = entity.NormalizeCouponCode(code)
	if code == "" {
		return nil, fieldError("code", "coupon code is required")
	}

	srv.mu.Lock()
	epoch := srv.epoch
	srv.mu.Unlock()

	validation := entity.CouponValidation{
		Code:           code,
		CouponCodes:    srv.Codes(),
		PurchaseAmount: purchaseAmount,
	}

	coupon, err := query.Mutate(ctx, srv.queries, query.Mutation[entity.CouponValidation, *entity.Coupon]{
		Name:      mutationCouponValidate,
		Exclusive: true,
		Do: func(ctx context.Context, in entity.CouponValidation) (*entity.Coupon, error) {
			srv.setPending(in.Code)

			return srv.couponRepo.Validate(ctx, in)
		},
	}, validation)
	if errors.Is(err, domainerrors.ErrMutationPending) {
		return nil, err
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.pending = ""
	if srv.epoch != epoch {
		loggerFor(ctx, srv.logger).Debug("Dropping coupon validated for a reset session", slog.String("code", code))

		return nil, errors.WithStack(domainerrors.ErrCouponRejected.
			WithMessage("session changed, apply the coupon again").
			WithDetails(code))
	}
	if err != nil {
		srv.lastErr = rejection(err)
		loggerFor(ctx, srv.logger).Debug("Coupon rejected", slog.String("code", code), slog.Any("error", err))

		return nil, srv.lastErr
	}
	if coupon == nil {
		srv.lastErr = errors.WithStack(domainerrors.ErrMalformedResponse.WithDetails("coupon validation without coupon"))

		return nil, srv.lastErr
	}

	srv.lastErr = nil
	srv.accepted = append(srv.accepted, *coupon)
	accepted := *coupon

	return &accepted, nil
}

// rejection turns a business refusal into a coupon rejection keeping the backend's message.
func rejection(err error) error {
	switch domainerrors.KindOf(err) {
	case domainerrors.KindRejected, domainerrors.KindNotFound, domainerrors.KindConflict:
		return errors.WithStack(domainerrors.ErrCouponRejected.
			WithMessage(domainerrors.AsAppError(err).Message()).
			WithCause(err))
	case domainerrors.KindValidation:
		appErr := domainerrors.AsAppError(err)
		if len(appErr.Fields()) == 0 {
			return errors.WithStack(domainerrors.ErrCouponRejected.WithMessage(appErr.Message()).WithCause(err))
		}
	}

	return err
}

func (srv *couponService) setPending(code string) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.pending = code
	srv.lastErr = nil
}

func (srv *couponService) Remove(code string) {
	code = entity.NormalizeCouponCode(code)

	srv.mu.Lock()
	defer srv.mu.Unlock()

	idx := slices.IndexFunc(srv.accepted, func(c entity.Coupon) bool {
		return entity.NormalizeCouponCode(c.Code) == code
	})
	if idx >= 0 {
		srv.accepted = slices.Delete(slices.Clone(srv.accepted), idx, idx+1)
	}
}

func (srv *couponService) State() usecase.CouponState {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	state := usecase.CouponState{
		Accepted: slices.Clone(srv.accepted),
		Pending:  srv.pending,
	}
	if state.Accepted == nil {
		state.Accepted = []entity.Coupon{}
	}
	if srv.lastErr != nil {
		state.Error = domainerrors.AsAppError(srv.lastErr).Message()
	}

	return state
}

func (srv *couponService) Codes() []string {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	codes := make([]string, 0, len(srv.accepted))
	for _, coupon := range srv.accepted {
		codes = append(codes, coupon.Code)
	}

	return codes
}

func (srv *couponService) Reset() {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.accepted = nil
	srv.pending = ""
	srv.lastErr = nil
	srv.epoch++
}

// couponAdminService implements the CouponAdminUsecase interface.
type couponAdminService struct {
	couponRepo repository.CouponRepository
	store      *session.Store
	queries    *query.Client
	staleTime  time.Duration
	logger     *slog.Logger
}

// NewCouponAdminService is the constructor for couponAdminService.
func NewCouponAdminService(
	couponRepo repository.CouponRepository,
	store *session.Store,
	queries *query.Client,
	cache config.CacheConfig,
	logger *slog.Logger,
) usecase.CouponAdminUsecase {
	return &couponAdminService{
		couponRepo: couponRepo,
		store:      store,
		queries:    queries,
		staleTime:  cache.Coupons,
		logger:     logger,
	}
}

func (srv *couponAdminService) Coupons(ctx context.Context) query.Result[[]entity.Coupon] {
	res := query.Fetch(ctx, srv.queries, query.Query[[]entity.Coupon]{
		Key:       query.K(resourceCoupons, srv.store.Scope()),
		StaleTime: srv.staleTime,
		Enabled:   authenticated(srv.store),
		Fetch:     srv.couponRepo.List,
	})

	user := srv.store.User()
	if user == nil || user.Role != entity.RoleSeller {
		return res
	}

	return query.Map(res, func(coupons []entity.Coupon) []entity.Coupon {
		return entity.CouponsCreatedBy(coupons, user.ID)
	})
}

func (srv *couponAdminService) Create(ctx context.Context, coupon entity.Coupon) (*entity.Coupon, error) {
	if err := validateCoupon(coupon); err != nil {
		return nil, err
	}

	return query.Mutate(ctx, srv.queries, query.Mutation[entity.Coupon, *entity.Coupon]{
		Name:       "coupon-create",
		Do:         srv.couponRepo.Create,
		Invalidate: srv.invalidate,
	}, coupon)
}

func (srv *couponAdminService) Update(ctx context.Context, id string, coupon entity.Coupon) (*entity.Coupon, error) {
	if err := validateCoupon(coupon); err != nil {
		return nil, err
	}

	return query.Mutate(ctx, srv.queries, query.Mutation[entity.Coupon, *entity.Coupon]{
		Name: "coupon-update",
		Do: func(ctx context.Context, in entity.Coupon) (*entity.Coupon, error) {
			return srv.couponRepo.Update(ctx, id, in)
		},
		Invalidate: srv.invalidate,
	}, coupon)
}

func (srv *couponAdminService) Delete(ctx context.Context, id string) error {
	_, err := query.Mutate(ctx, srv.queries, query.Mutation[string, struct{}]{
		Name: "coupon-delete",
		Do: func(ctx context.Context, id string) (struct{}, error) {
			return struct{}{}, srv.couponRepo.Delete(ctx, id)
		},
		Invalidate: func(string, struct{}) []query.Key { return []query.Key{query.K(resourceCoupons)} },
	}, id)

	return err
}

func (srv *couponAdminService) invalidate(entity.Coupon, *entity.Coupon) []query.Key {
	return []query.Key{query.K(resourceCoupons)}
}

func validateCoupon(coupon entity.Coupon) error {
	var fields []domainerrors.FieldError
	if entity.NormalizeCouponCode(coupon.Code) == "" {
		fields = append(fields, domainerrors.FieldError{Field: "code", Message: "code is required"})
	}
	if coupon.Type != entity.CouponPercentage && coupon.Type != entity.CouponFixed {
		fields = append(fields, domainerrors.FieldError{Field: "type", Message: "type must be percentage or fixed"})
	}
	if !coupon.Value.IsPositive() {
		fields = append(fields, domainerrors.FieldError{Field: "value", Message: "value must be positive"})
	}
	if coupon.Type == entity.CouponPercentage && coupon.Value.GreaterThan(decimal.NewFromInt(100)) {
		fields = append(fields, domainerrors.FieldError{Field: "value", Message: "percentage cannot exceed 100"})
	}
	if !coupon.ExpirationDate.IsZero() && coupon.ExpirationDate.Before(coupon.StartDate) {
		fields = append(fields, domainerrors.FieldError{Field: "expirationDate", Message: "expiration must follow the start date"})
	}
	if len(fields) > 0 {
		return domainerrors.ErrValidationFailed.WithFields(fields...)
	}

	return nil
}

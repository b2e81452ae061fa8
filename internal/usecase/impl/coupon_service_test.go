package impl

import (
	"context"
	"testing"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	mockRepo "storefront/internal/mocks/repository"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func createTestCouponService(t *testing.T) (usecase.CouponUsecase, *mockRepo.MockCouponRepository) {
	couponRepo := mockRepo.NewMockCouponRepository(t)

	return NewCouponService(couponRepo, newTestQueries(), newDiscardLogger()), couponRepo
}

func validationFor(code string, accepted ...string) any {
	return mock.MatchedBy(func(v entity.CouponValidation) bool {
		if v.Code != code || len(v.CouponCodes) != len(accepted) {
			return false
		}
		for i := range accepted {
			if v.CouponCodes[i] != accepted[i] {
				return false
			}
		}

		return true
	})
}

func fixedCoupon(code string, value int64) *entity.Coupon {
	return &entity.Coupon{Code: code, Type: entity.CouponFixed, Value: decimal.NewFromInt(value), Status: entity.CouponActive}
}

func TestCouponService_Apply_SendsAcceptedCodes(t *testing.T) {
	service, couponRepo := createTestCouponService(t)
	ctx := context.Background()

	couponRepo.On("Validate", mock.Anything, validationFor("FIRST")).Return(fixedCoupon("FIRST", 5), nil).Once()
	couponRepo.On("Validate", mock.Anything, validationFor("SECOND", "FIRST")).Return(fixedCoupon("SECOND", 10), nil).Once()

	_, err := service.Apply(ctx, "first", decimal.NewFromInt(100))
	require.NoError(t, err)
	coupon, err := service.Apply(ctx, " second ", decimal.NewFromInt(100))
	require.NoError(t, err)

	assert.Equal(t, "SECOND", coupon.Code)
	assert.Equal(t, []string{"FIRST", "SECOND"}, service.Codes())
}

func TestCouponService_Apply_RejectionKeepsAcceptedList(t *testing.T) {
	service, couponRepo := createTestCouponService(t)
	ctx := context.Background()

	couponRepo.On("Validate", mock.Anything, validationFor("FIRST")).Return(fixedCoupon("FIRST", 5), nil).Once()
	couponRepo.On("Validate", mock.Anything, validationFor("EXPIRED", "FIRST")).
		Return(nil, domainerrors.FromStatus(400, "Coupon has expired", nil)).
		Once()

	_, err := service.Apply(ctx, "FIRST", decimal.NewFromInt(100))
	require.NoError(t, err)

	_, err = service.Apply(ctx, "expired", decimal.NewFromInt(100))

	require.ErrorIs(t, err, domainerrors.ErrCouponRejected)
	state := service.State()
	require.Len(t, state.Accepted, 1)
	assert.Equal(t, "FIRST", state.Accepted[0].Code)
	assert.Empty(t, state.Pending)
	assert.Equal(t, "Coupon has expired", state.Error)
}

func TestCouponService_Apply_PendingWhileValidating(t *testing.T) {
	service, couponRepo := createTestCouponService(t)

	couponRepo.On("Validate", mock.Anything, validationFor("SPRING")).
		Run(func(mock.Arguments) {
			assert.Equal(t, "SPRING", service.State().Pending)
		}).
		Return(fixedCoupon("SPRING", 3), nil).
		Once()

	_, err := service.Apply(context.Background(), "spring", decimal.NewFromInt(30))

	require.NoError(t, err)
	assert.Empty(t, service.State().Pending)
}

func TestCouponService_Apply_DuplicatesAreLeftToTheBackend(t *testing.T) {
	service, couponRepo := createTestCouponService(t)
	ctx := context.Background()

	couponRepo.On("Validate", mock.Anything, validationFor("SAME")).Return(fixedCoupon("SAME", 5), nil).Once()
	couponRepo.On("Validate", mock.Anything, validationFor("SAME", "SAME")).
		Return(nil, domainerrors.FromStatus(400, "Coupon already applied", nil)).
		Once()

	_, err := service.Apply(ctx, "SAME", decimal.NewFromInt(100))
	require.NoError(t, err)
	_, err = service.Apply(ctx, "SAME", decimal.NewFromInt(100))

	require.Error(t, err)
	couponRepo.AssertNumberOfCalls(t, "Validate", 2)
	assert.Equal(t, []string{"SAME"}, service.Codes())
}

func TestCouponService_Apply_SecondSubmitWhileRunning(t *testing.T) {
	service, couponRepo := createTestCouponService(t)
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})

	couponRepo.On("Validate", mock.Anything, validationFor("SLOW")).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(fixedCoupon("SLOW", 1), nil).
		Once()

	done := make(chan error, 1)
	go func() {
		_, err := service.Apply(ctx, "SLOW", decimal.NewFromInt(10))
		done <- err
	}()
	<-started

	_, err := service.Apply(ctx, "OTHER", decimal.NewFromInt(10))
	require.ErrorIs(t, err, domainerrors.ErrMutationPending)
	assert.Equal(t, "SLOW", service.State().Pending)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"SLOW"}, service.Codes())
}

func TestCouponService_Apply_ResetDuringValidationDropsCoupon(t *testing.T) {
	service, couponRepo := createTestCouponService(t)
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})

	couponRepo.On("Validate", mock.Anything, validationFor("WELCOME")).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(fixedCoupon("WELCOME", 5), nil).
		Once()

	done := make(chan error, 1)
	go func() {
		_, err := service.Apply(ctx, "WELCOME", decimal.NewFromInt(50))
		done <- err
	}()
	<-started

	service.Reset()
	close(release)

	err := <-done
	require.ErrorIs(t, err, domainerrors.ErrCouponRejected)
	assert.Empty(t, service.Codes())

	state := service.State()
	assert.Empty(t, state.Accepted)
	assert.Empty(t, state.Pending)
	assert.Empty(t, state.Error)
}

func TestCouponService_Apply_EmptyCode(t *testing.T) {
	service, _ := createTestCouponService(t)

	_, err := service.Apply(context.Background(), "   ", decimal.NewFromInt(10))

	assert.True(t, domainerrors.IsKind(err, domainerrors.KindValidation))
}

func TestCouponService_RemoveAndReset(t *testing.T) {
	service, couponRepo := createTestCouponService(t)
	ctx := context.Background()

	couponRepo.On("Validate", mock.Anything, mock.Anything).Return(fixedCoupon("A", 1), nil).Once()
	couponRepo.On("Validate", mock.Anything, mock.Anything).Return(fixedCoupon("B", 1), nil).Once()

	_, err := service.Apply(ctx, "A", decimal.NewFromInt(10))
	require.NoError(t, err)
	_, err = service.Apply(ctx, "B", decimal.NewFromInt(10))
	require.NoError(t, err)

	service.Remove("a")
	assert.Equal(t, []string{"B"}, service.Codes())

	service.Remove("missing")
	assert.Equal(t, []string{"B"}, service.Codes())

	service.Reset()
	assert.Empty(t, service.Codes())
	assert.Empty(t, service.State().Accepted)
	couponRepo.AssertNumberOfCalls(t, "Validate", 2)
}

func TestCouponAdminService_SellerSeesOwnCoupons(t *testing.T) {
	coupons := []entity.Coupon{
		{ID: "c1", Code: "MINE", CreatedBy: "s1"},
		{ID: "c2", Code: "THEIRS", CreatedBy: "s2"},
	}

	tests := []struct {
		name  string
		user  entity.User
		codes []string
	}{
		{name: "seller", user: entity.User{ID: "s1", Role: entity.RoleSeller}, codes: []string{"MINE"}},
		{name: "admin", user: entity.User{ID: "a1", Role: entity.RoleAdmin}, codes: []string{"MINE", "THEIRS"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			couponRepo := mockRepo.NewMockCouponRepository(t)
			service := NewCouponAdminService(couponRepo, userStore(tt.user), newTestQueries(), newTestCache(), newDiscardLogger())

			couponRepo.On("List", mock.Anything).Return(coupons, nil).Once()

			res := service.Coupons(context.Background())

			require.True(t, res.HasData)
			codes := make([]string, 0, len(res.Data))
			for _, c := range res.Data {
				codes = append(codes, c.Code)
			}
			assert.Equal(t, tt.codes, codes)
		})
	}
}

func TestCouponAdminService_CreateInvalidatesList(t *testing.T) {
	couponRepo := mockRepo.NewMockCouponRepository(t)
	service := NewCouponAdminService(couponRepo, userStore(entity.User{ID: "a1", Role: entity.RoleAdmin}), newTestQueries(), newTestCache(), newDiscardLogger())
	ctx := context.Background()
	coupon := entity.Coupon{Code: "NEW10", Type: entity.CouponPercentage, Value: decimal.NewFromInt(10)}

	couponRepo.On("List", mock.Anything).Return([]entity.Coupon{}, nil).Once()
	couponRepo.On("Create", mock.Anything, coupon).Return(&coupon, nil).Once()
	couponRepo.On("List", mock.Anything).Return([]entity.Coupon{coupon}, nil).Once()

	require.Empty(t, service.Coupons(ctx).Data)

	_, err := service.Create(ctx, coupon)
	require.NoError(t, err)

	res := service.Coupons(ctx)
	require.Len(t, res.Data, 1)
	couponRepo.AssertNumberOfCalls(t, "List", 2)
}

func TestCouponAdminService_CreateValidation(t *testing.T) {
	couponRepo := mockRepo.NewMockCouponRepository(t)
	service := NewCouponAdminService(couponRepo, userStore(entity.User{ID: "a1", Role: entity.RoleAdmin}), newTestQueries(), newTestCache(), newDiscardLogger())

	_, err := service.Create(context.Background(), entity.Coupon{Type: entity.CouponPercentage, Value: decimal.NewFromInt(150)})

	require.Error(t, err)
	fields := domainerrors.AsAppError(err).Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, "code", fields[0].Field)
	assert.Equal(t, "value", fields[1].Field)
}

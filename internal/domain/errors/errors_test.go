package errors

import (
	"context"
	"net/http"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestFromStatus(t *testing.T) {
	fields := []FieldError{{Field: "email", Message: "already registered"}}

	tests := []struct {
		name     string
		status   int
		fields   []FieldError
		wantKind Kind
		wantCode int
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantKind: KindUnauthorized, wantCode: http.StatusUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, wantKind: KindForbidden, wantCode: http.StatusForbidden},
		{name: "not found", status: http.StatusNotFound, wantKind: KindNotFound, wantCode: http.StatusNotFound},
		{name: "bad request with fields", status: http.StatusBadRequest, fields: fields, wantKind: KindValidation, wantCode: http.StatusBadRequest},
		{name: "unprocessable with fields", status: http.StatusUnprocessableEntity, fields: fields, wantKind: KindValidation, wantCode: http.StatusUnprocessableEntity},
		{name: "bad request general", status: http.StatusBadRequest, wantKind: KindRejected, wantCode: http.StatusBadRequest},
		{name: "conflict", status: http.StatusConflict, wantKind: KindConflict, wantCode: http.StatusConflict},
		{name: "server", status: http.StatusInternalServerError, wantKind: KindServer, wantCode: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromStatus(tt.status, "backend says no", tt.fields)

			assert.Equal(t, tt.wantKind, err.Kind())
			assert.Equal(t, tt.wantCode, err.HTTPCode())
			assert.Equal(t, "backend says no", err.Message())
			assert.Len(t, err.Fields(), len(tt.fields))
		})
	}
}

func TestFromStatus_KeepsDefaultMessageWhenEmpty(t *testing.T) {
	err := FromStatus(http.StatusNotFound, "", nil)

	assert.Equal(t, ErrNotFound.Message(), err.Message())
}

func TestFromStatus_LeavesPredefinedErrorsUntouched(t *testing.T) {
	before := ErrRejected.HTTPCode()

	err := FromStatus(http.StatusUnprocessableEntity, "", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPCode())
	assert.Equal(t, before, ErrRejected.HTTPCode())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, KindNetwork, KindOf(context.DeadlineExceeded))
	assert.Equal(t, KindServer, KindOf(pkgerrors.New("boom")))
	assert.Equal(t, KindPending, KindOf(pkgerrors.Wrap(ErrMutationPending, "checkout")))
	assert.True(t, IsKind(ErrCouponRejected.WithMessage("expired"), KindRejected))
}

func TestBaseError_IsMatchesCopies(t *testing.T) {
	derived := ErrSessionExpired.WithDetails("refresh failed").WithCause(pkgerrors.New("401"))

	assert.True(t, pkgerrors.Is(derived, ErrSessionExpired))
	assert.False(t, pkgerrors.Is(derived, ErrUnauthorized))
	assert.Contains(t, derived.Error(), "401")
}

func TestKind_Retryable(t *testing.T) {
	assert.True(t, KindNetwork.Retryable())
	assert.True(t, KindServer.Retryable())
	assert.False(t, KindValidation.Retryable())
	assert.False(t, KindUnauthorized.Retryable())
}

func TestWithFields_DoesNotShareBacking(t *testing.T) {
	a := ErrValidationFailed.WithFields(FieldError{Field: "title", Message: "required"})
	b := a.WithFields(FieldError{Field: "price", Message: "positive"})

	assert.Len(t, a.Fields(), 1)
	assert.Len(t, b.Fields(), 2)
	assert.Empty(t, ErrValidationFailed.Fields())
}

package validator

import (
	"testing"

	domainerrors "storefront/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type address struct {
	City string `json:"city" validate:"required"`
}

type signup struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Role     string  `json:"role" validate:"omitempty,oneof=user seller"`
	Address  address `json:"address"`
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(&signup{Email: "nope", Password: "abc", Role: "root"})

	require.Error(t, err)
	assert.True(t, domainerrors.IsKind(err, domainerrors.KindValidation))

	fields := domainerrors.AsAppError(err).Fields()
	messages := make(map[string]string, len(fields))
	for _, f := range fields {
		messages[f.Field] = f.Message
	}

	assert.Equal(t, "must be a valid email address", messages["email"])
	assert.Equal(t, "must be at least 6 characters", messages["password"])
	assert.Equal(t, "must be one of: user, seller", messages["role"])
	assert.Equal(t, "is required", messages["address.city"])
}

func TestValidate_Valid(t *testing.T) {
	v := New()

	err := v.Validate(&signup{Email: "ada@example.com", Password: "secret", Address: address{City: "Taipei"}})

	assert.NoError(t, err)
}

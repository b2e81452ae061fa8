package main

import (
	"os"
	"path/filepath"
	"testing"

	domainerrors "storefront/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileID(t *testing.T) {
	assert.Equal(t, profileID("default"), profileID(" Default "))
	assert.NotEqual(t, profileID("default"), profileID("seller"))
}

func TestLoadOrCreateKey(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")

	key, err := loadOrCreateKey(dir)
	require.NoError(t, err)
	assert.Len(t, key, 64)

	info, err := os.Stat(filepath.Join(dir, keyFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := loadOrCreateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, key, again)
}

func TestDescribe(t *testing.T) {
	t.Run("plain error", func(t *testing.T) {
		assert.Equal(t, "Error: boom", describe(errors.New("boom")))
	})

	t.Run("field errors", func(t *testing.T) {
		err := errors.WithStack(domainerrors.ErrValidationFailed.WithFields(
			domainerrors.FieldError{Field: "email", Message: "is required"},
		))

		msg := describe(err)
		assert.Contains(t, msg, "email: is required")
	})

	t.Run("unauthorized adds hint", func(t *testing.T) {
		msg := describe(domainerrors.ErrNotAuthenticated)
		assert.Contains(t, msg, "storefront login")
	})
}

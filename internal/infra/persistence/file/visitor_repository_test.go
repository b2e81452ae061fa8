package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
)

func TestVisitorRepository_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "visitors.json")
	ctx := context.Background()
	id := uuid.New()

	first := NewVisitorRepository(path)
	require.NoError(t, first.Save(ctx, &entity.VisitorCredentials{
		VisitorID:     id,
		SealedToken:   []byte{1, 2, 3},
		SealedCookies: []byte{4, 5},
	}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second := NewVisitorRepository(path)
	found, err := second.Find(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, found.SealedToken)
	assert.Equal(t, []byte{4, 5}, found.SealedCookies)

	require.NoError(t, second.Delete(ctx, id))
	_, err = first.Find(ctx, id)
	assert.ErrorIs(t, err, repository.ErrVisitorNotFound)
}

func TestVisitorRepository_MissingFileIsEmpty(t *testing.T) {
	repo := NewVisitorRepository(filepath.Join(t.TempDir(), "absent.json"))

	_, err := repo.Find(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrVisitorNotFound)

	removed, err := repo.DeleteIdle(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestVisitorRepository_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visitors.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewVisitorRepository(path).Find(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestVisitorRepository_DeleteIdle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visitors.json")
	repo := NewVisitorRepository(path)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &entity.VisitorCredentials{VisitorID: uuid.New()}))

	removed, err := repo.DeleteIdle(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
)

func TestVisitorRepository_SaveFindDelete(t *testing.T) {
	repo := NewVisitorRepository()
	ctx := context.Background()
	id := uuid.New()

	_, err := repo.Find(ctx, id)
	assert.ErrorIs(t, err, repository.ErrVisitorNotFound)

	creds := &entity.VisitorCredentials{VisitorID: id, SealedToken: []byte("t"), SealedCookies: []byte("c")}
	require.NoError(t, repo.Save(ctx, creds))
	assert.False(t, creds.UpdatedAt.IsZero())

	// the stored copy is independent of the caller's slices
	creds.SealedToken[0] = 'x'

	found, err := repo.Find(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("t"), found.SealedToken)
	assert.Equal(t, []byte("c"), found.SealedCookies)

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.Find(ctx, id)
	assert.ErrorIs(t, err, repository.ErrVisitorNotFound)
}

func TestVisitorRepository_DeleteIdle(t *testing.T) {
	repo := NewVisitorRepository().(*visitorRepository)
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	repo.now = func() time.Time { return now.Add(-time.Hour) }
	require.NoError(t, repo.Save(ctx, &entity.VisitorCredentials{VisitorID: uuid.New()}))

	repo.now = func() time.Time { return now }
	fresh := uuid.New()
	require.NoError(t, repo.Save(ctx, &entity.VisitorCredentials{VisitorID: fresh}))

	removed, err := repo.DeleteIdle(ctx, now.Add(-30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = repo.Find(ctx, fresh)
	assert.NoError(t, err)
}

// Package memory keeps visitor credentials in process memory.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
)

type visitorRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]entity.VisitorCredentials
	now     func() time.Time
}

func NewVisitorRepository() repository.VisitorRepository {
	return &visitorRepository{
		records: make(map[uuid.UUID]entity.VisitorCredentials),
		now:     time.Now,
	}
}

func (r *visitorRepository) Save(_ context.Context, creds *entity.VisitorCredentials) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	creds.UpdatedAt = r.now()
	r.records[creds.VisitorID] = cloneCredentials(*creds)

	return nil
}

func (r *visitorRepository) Find(_ context.Context, visitorID uuid.UUID) (*entity.VisitorCredentials, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	creds, ok := r.records[visitorID]
	if !ok {
		return nil, repository.ErrVisitorNotFound
	}
	c := cloneCredentials(creds)

	return &c, nil
}

func (r *visitorRepository) Delete(_ context.Context, visitorID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, visitorID)

	return nil
}

func (r *visitorRepository) DeleteIdle(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for id, creds := range r.records {
		if creds.UpdatedAt.Before(before) {
			delete(r.records, id)
			removed++
		}
	}

	return removed, nil
}

func cloneCredentials(c entity.VisitorCredentials) entity.VisitorCredentials {
	c.SealedToken = append([]byte(nil), c.SealedToken...)
	c.SealedCookies = append([]byte(nil), c.SealedCookies...)

	return c
}

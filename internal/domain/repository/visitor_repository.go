package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrVisitorNotFound is returned when no credentials were persisted for a visitor.
var ErrVisitorNotFound = errors.New("visitor not found")

// VisitorRepository persists sealed visitor credentials across restarts.
type VisitorRepository interface {
	// Save inserts or replaces the visitor's credentials.
	Save(ctx context.Context, creds *entity.VisitorCredentials) error

	Find(ctx context.Context, visitorID uuid.UUID) (*entity.VisitorCredentials, error)

	Delete(ctx context.Context, visitorID uuid.UUID) error

	// DeleteIdle removes records not updated since before and returns how many were removed.
	DeleteIdle(ctx context.Context, before time.Time) (int64, error)
}

package query

import (
	"context"
	"time"
)

// SharedStore is a second-level cache shared between clients, used for
// queries that carry no identity (public catalog data).
type SharedStore interface {
	// Get returns the stored value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// DeletePrefix removes key and every key below it.
	DeletePrefix(ctx context.Context, key string) error
}

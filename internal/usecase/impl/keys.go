// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"slices"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/query"
	"storefront/internal/session"
)

const (
	resourceCart        = "cart"
	resourceCartSummary = "cart-summary"
	resourceProducts    = "products"
	resourceProduct     = "product"
	resourceCategories  = "categories"
	resourceReviews     = "reviews"
	resourceOrders      = "orders"
	resourceCoupons     = "coupons"
	resourceUsers       = "users"
)

func cartKey(scope string) query.Key {
	return query.K(resourceCart, scope)
}

// summaryKey expects codes already passed through summaryCodes.
func summaryKey(scope string, codes []string) query.Key {
	return query.K(resourceCartSummary, scope, codes)
}

// cartKeys are the prefixes every cart write invalidates.
func cartKeys(scope string) []query.Key {
	return []query.Key{cartKey(scope), query.K(resourceCartSummary, scope)}
}

// summaryCodes upper-cases and sorts codes so equal sets share one summary entry.
func summaryCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		out = append(out, entity.NormalizeCouponCode(code))
	}
	slices.Sort(out)

	return out
}

// identityScoped lists the prefixes whose entries belong to one caller.
// Catalog reads are public and survive an identity switch.
func identityScoped() []query.Key {
	return []query.Key{
		query.K(resourceCart),
		query.K(resourceCartSummary),
		query.K(resourceOrders),
		query.K(resourceCoupons),
		query.K(resourceUsers),
		query.K(resourceProducts, "manage"),
		query.K(resourceProducts, "deleted"),
	}
}

func requireUser(store *session.Store) (*entity.User, error) {
	if !store.IsAuthenticated() {
		return nil, domainerrors.ErrNotAuthenticated
	}

	return store.User(), nil
}

// authenticated is the gate of reads that need an identity.
func authenticated(store *session.Store) func() bool {
	return store.IsAuthenticated
}

func loggerFor(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, fallback)
}

func fieldError(field, message string) error {
	return domainerrors.ErrValidationFailed.WithFields(domainerrors.FieldError{Field: field, Message: message})
}

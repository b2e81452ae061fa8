package api

import (
	"cmp"
	"slices"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
)

// Response schemas, one per endpoint family.

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type profileResponse struct {
	User *entity.User `json:"user"`
}

type authResponse struct {
	Data struct {
		User        *entity.User `json:"user"`
		AccessToken string       `json:"accessToken"`
	} `json:"data"`
}

type cartResponse struct {
	Data struct {
		Items []entity.CartItem `json:"items"`
	} `json:"data"`
}

type summaryResponse struct {
	Data struct {
		Summary *entity.CartSummary `json:"summary"`
	} `json:"data"`
}

// dataResponse is the canonical {data} envelope.
type dataResponse[T any] struct {
	Data *T `json:"data"`
}

type listResponse[T any] struct {
	Data []T `json:"data"`
}

type pageResponse[T any] struct {
	Data *entity.Page[T] `json:"data"`
}

// unwrap returns the payload or a malformed-response error when it is missing.
func unwrap[T any](v *T, what string) (*T, error) {
	if v == nil {
		return nil, domainerrors.ErrMalformedResponse.WithDetails("missing " + what)
	}

	return v, nil
}

func sortFields(fields []domainerrors.FieldError) {
	slices.SortFunc(fields, func(a, b domainerrors.FieldError) int {
		return cmp.Compare(a.Field, b.Field)
	})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}

	return items
}

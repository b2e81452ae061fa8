// Package handler holds the BFF endpoints. Every handler works on the
// visitor's own storefront client, attached by the visitor middleware.
package handler

import (
	"strconv"

	"storefront/internal/delivery/middleware"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/storefront"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func visitor(c echo.Context) (*storefront.Client, error) {
	client := middleware.GetClient(c)
	if client == nil {
		return nil, errors.WithStack(domainerrors.ErrInternalError.WithDetails("visitor client missing"))
	}

	return client, nil
}

// bind decodes and validates a request body.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domainerrors.ErrValidationFailed.WithMessage("malformed request body")
	}

	return c.Validate(req)
}

// param returns a required path parameter.
func param(c echo.Context, name string) (string, error) {
	value := c.Param(name)
	if value == "" {
		return "", domainerrors.ErrValidationFailed.WithFields(domainerrors.FieldError{Field: name, Message: "is required"})
	}

	return value, nil
}

func queryInt(c echo.Context, name string, fallback int) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || n <= 0 {
		return fallback
	}

	return n
}

package middleware

import (
	"net/http"
	"strings"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/guard"

	"github.com/labstack/echo/v4"
)

// GuardMiddleware applies the route policy to the visitor's session. Paths
// are matched without the mount prefix, so /api/seller/products is checked
// as /seller/products.
type GuardMiddleware struct {
	policy *guard.Policy
	mount  string
}

func NewGuardMiddleware(policy *guard.Policy) *GuardMiddleware {
	return &GuardMiddleware{policy: policy, mount: "/api"}
}

// Require must run after VisitorMiddleware.Attach.
func (m *GuardMiddleware) Require(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		client := GetClient(c)
		if client == nil {
			return domainerrors.ErrNotAuthenticated
		}

		path := strings.TrimPrefix(c.Request().URL.Path, m.mount)
		switch decision := m.policy.Check(client.Session.Snapshot(), path); decision {
		case guard.Allow:
			return next(c)
		case guard.RequireLogin:
			return domainerrors.ErrNotAuthenticated
		case guard.Forbidden:
			return domainerrors.ErrForbidden.WithDetails("requires role: " + joinRoles(m.policy.Roles(path)))
		default:
			return echo.NewHTTPError(http.StatusServiceUnavailable, "session is still being resolved")
		}
	}
}

func joinRoles(roles entity.Roles) string {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.String())
	}

	return strings.Join(names, " or ")
}

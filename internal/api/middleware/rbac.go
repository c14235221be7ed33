package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opendatahub/dataset-api/internal/core/domain"
)

// RBAC enforces role-based access control against the identity injected by
// Auth. Anonymous requests are rejected with 401, authenticated requests
// whose role is outside the allowed set with 403.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, _ := c.Get(UserContextKey).(*domain.User)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if _, ok := allowed[user.Role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}

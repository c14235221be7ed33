package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/opendatahub/dataset-api/internal/api/middleware"
	"github.com/opendatahub/dataset-api/internal/core/domain"
)

// currentUser returns the identity injected by the Auth middleware, or nil
// for anonymous requests.
func currentUser(c echo.Context) *domain.User {
	user, _ := c.Get(middleware.UserContextKey).(*domain.User)
	return user
}

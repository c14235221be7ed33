package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/opendatahub/dataset-api/internal/core/domain"
)

func invokeRBAC(t *testing.T, user *domain.User, allowed ...string) (bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(UserContextKey, user)
	}

	called := false
	handler := RBAC(allowed...)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	return called, handler(c)
}

func TestRBAC_AllowsMatchingRole(t *testing.T) {
	called, err := invokeRBAC(t, &domain.User{ID: "u1", Role: domain.RoleAnalyst}, domain.RoleAdmin, domain.RoleAnalyst)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
}

func TestRBAC_ForbidsOtherRole(t *testing.T) {
	called, err := invokeRBAC(t, &domain.User{ID: "u1", Role: domain.RoleUser}, domain.RoleAdmin, domain.RoleAnalyst)
	if called {
		t.Fatalf("next handler should not run")
	}
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestRBAC_RejectsAnonymous(t *testing.T) {
	called, err := invokeRBAC(t, nil, domain.RoleAdmin)
	if called {
		t.Fatalf("next handler should not run")
	}
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

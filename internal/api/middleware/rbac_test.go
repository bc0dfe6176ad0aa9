package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/tenantcore/platform/internal/core/domain"
)

func statusOf(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	if err != nil {
		return http.StatusInternalServerError
	}
	return http.StatusOK
}

func TestCheck(t *testing.T) {
	admin := &domain.UserContext{Role: domain.RoleAdmin}
	user := &domain.UserContext{Role: domain.RoleUser}
	adminsOnly := Policy{Roles: []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin}}

	tests := []struct {
		name   string
		user   *domain.UserContext
		policy Policy
		want   int
	}{
		{"public anonymous", nil, Policy{Public: true}, http.StatusOK},
		{"authenticated anonymous", nil, Policy{}, http.StatusUnauthorized},
		{"any role", user, Policy{}, http.StatusOK},
		{"role allowed", admin, adminsOnly, http.StatusOK},
		{"role denied", user, adminsOnly, http.StatusForbidden},
		{"roles but anonymous", nil, adminsOnly, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusOf(Check(tt.user, tt.policy)); got != tt.want {
				t.Fatalf("Check() status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAuthorize_Forbids(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(UserKey, &domain.UserContext{Role: domain.RoleUser})

	handler := Authorize(Policy{Roles: []domain.Role{domain.RoleSuperAdmin}})(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

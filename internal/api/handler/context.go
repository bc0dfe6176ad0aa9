package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tenantcore/platform/internal/api/middleware"
	"github.com/tenantcore/platform/internal/core/domain"
)

// currentUser returns the identity attached by the Auth middleware. Its
// absence means the route table wired a handler without authentication, which
// is answered with 401 rather than served anonymously.
func currentUser(c echo.Context) (*domain.UserContext, error) {
	uc := middleware.CurrentUser(c)
	if uc == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return uc, nil
}

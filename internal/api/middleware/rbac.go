package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tenantcore/platform/internal/core/domain"
)

// Policy is the access rule of one route, declared in the route table.
type Policy struct {
	// Public routes skip authentication entirely.
	Public bool
	// Roles lists who may call the route; empty means any authenticated user.
	Roles []domain.Role
	// SkipTenant opts the route out of tenant stamping. Only for routes whose
	// data is not tenant-owned.
	SkipTenant bool
}

// Check is the single authorization decision for a request.
func Check(user *domain.UserContext, p Policy) error {
	if p.Public {
		return nil
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	if len(p.Roles) == 0 {
		return nil
	}
	for _, r := range p.Roles {
		if user.Role == r {
			return nil
		}
	}
	return echo.NewHTTPError(http.StatusForbidden, "forbidden")
}

// Authorize enforces p against the user attached by Auth.
func Authorize(p Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := Check(CurrentUser(c), p); err != nil {
				return err
			}
			return next(c)
		}
	}
}

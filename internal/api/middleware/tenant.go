package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tenantcore/platform/internal/core/tenancy"
	"github.com/tenantcore/platform/internal/infrastructure/metrics"
)

// TenantKey is the echo context key holding the stamped tenant id.
const TenantKey = "tenant_id"

// Tenant stamps the caller's tenant on the request according to
// tenancy.Resolve. Uses of the skip flag are logged with the route name so
// cross-tenant routes stay auditable.
func Tenant(route string, skip bool, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			tenantID, stamped := tenancy.Resolve(user, skip)

			switch {
			case stamped:
				c.Set(TenantKey, tenantID)
				c.SetRequest(c.Request().WithContext(tenancy.WithTenant(c.Request().Context(), tenantID)))
				metrics.TenantStampsTotal.WithLabelValues("stamped").Inc()
			case user == nil:
				metrics.TenantStampsTotal.WithLabelValues("anonymous").Inc()
			case user.IsSuperAdmin():
				metrics.TenantStampsTotal.WithLabelValues("super_admin").Inc()
				log.Debug().Str("route", route).Str("user_id", user.ID).Msg("super admin request, tenant not stamped")
			default:
				metrics.TenantStampsTotal.WithLabelValues("skipped").Inc()
				log.Debug().Str("route", route).Str("user_id", user.ID).Msg("tenant isolation skipped by route policy")
			}
			return next(c)
		}
	}
}

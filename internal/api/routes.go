package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tenantcore/platform/internal/api/middleware"
	"github.com/tenantcore/platform/internal/core/domain"
)

// route is one entry of the declarative route table. Authentication,
// authorization and tenant stamping are derived from policy and nothing else.
type route struct {
	method  string
	path    string
	name    string
	handler echo.HandlerFunc
	policy  middleware.Policy
}

var (
	public     = middleware.Policy{Public: true}
	authed     = middleware.Policy{}
	admins     = middleware.Policy{Roles: []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin}}
	superAdmin = middleware.Policy{Roles: []domain.Role{domain.RoleSuperAdmin}}
)

// crossTenant marks p as serving data that is not tenant-owned.
func crossTenant(p middleware.Policy) middleware.Policy {
	p.SkipTenant = true
	return p
}

func (d Deps) routes() []route {
	return []route{
		{http.MethodGet, "/health", "health.live", d.Health.Liveness, public},
		{http.MethodGet, "/health/ready", "health.ready", d.Health.Readiness, public},

		{http.MethodPost, "/auth/login", "auth.login", d.Auth.Login, public},
		{http.MethodPost, "/auth/2fa/verify", "auth.2fa.verify", d.Auth.VerifyTwoFactor, public},
		{http.MethodPost, "/auth/2fa/setup", "auth.2fa.setup", d.Auth.SetupTwoFactor, authed},
		{http.MethodPost, "/auth/2fa/enable", "auth.2fa.enable", d.Auth.EnableTwoFactor, authed},
		{http.MethodGet, "/auth/me", "auth.me", d.Auth.Me, authed},

		{http.MethodPost, "/users", "users.create", d.Auth.CreateUser, admins},

		{http.MethodGet, "/modules", "modules.list", d.Modules.List, crossTenant(authed)},
		{http.MethodGet, "/modules/:slug", "modules.get", d.Modules.Get, crossTenant(authed)},
		{http.MethodPost, "/modules", "modules.register", d.Modules.Register, crossTenant(superAdmin)},
		{http.MethodPost, "/modules/reload", "modules.reload", d.Modules.Reload, crossTenant(superAdmin)},

		{http.MethodPost, "/tenants", "tenants.create", d.Tenants.Create, superAdmin},
		{http.MethodGet, "/tenants", "tenants.list", d.Tenants.List, superAdmin},
		{http.MethodGet, "/tenants/current", "tenants.current", d.Tenants.Current, authed},
		{http.MethodGet, "/tenants/:id", "tenants.get", d.Tenants.Get, superAdmin},

		{http.MethodPost, "/notifications", "notifications.create", d.Notifications.Create, admins},
		{http.MethodGet, "/notifications", "notifications.list", d.Notifications.List, authed},
		{http.MethodGet, "/notifications/unread-count", "notifications.unread_count", d.Notifications.UnreadCount, authed},
		{http.MethodPatch, "/notifications/read-all", "notifications.read_all", d.Notifications.MarkAllRead, authed},
		{http.MethodPatch, "/notifications/:id/read", "notifications.read", d.Notifications.MarkRead, authed},

		{http.MethodGet, "/ws/whatsapp", "ws.whatsapp", d.Gateway.Handle, public},
	}
}

// chain builds the per-route middleware in the fixed order
// authenticate, authorize, stamp tenant.
func (d Deps) chain(r route) []echo.MiddlewareFunc {
	if r.policy.Public {
		return nil
	}
	return []echo.MiddlewareFunc{
		middleware.Auth(d.JWTSecret, d.Users),
		middleware.Authorize(r.policy),
		middleware.Tenant(r.name, r.policy.SkipTenant, d.Log),
	}
}

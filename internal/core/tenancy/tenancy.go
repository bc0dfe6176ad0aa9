// Package tenancy decides which tenant a request is scoped to and carries that
// decision on the request context.
//
//	user            skip   stamped tenant
//	nil             any    none
//	SUPER_ADMIN     any    none (cross-tenant)
//	ADMIN / USER    false  user.TenantID
//	ADMIN / USER    true   none (route opt-out)
package tenancy

import (
	"context"

	"github.com/tenantcore/platform/internal/core/domain"
)

type ctxKey struct{}

type scope struct {
	tenantID string
	user     *domain.UserContext
}

// Resolve applies the isolation policy. It returns the tenant id to stamp and
// whether anything should be stamped at all.
func Resolve(user *domain.UserContext, skip bool) (string, bool) {
	if user == nil || user.IsSuperAdmin() || skip {
		return "", false
	}
	return user.TenantID, true
}

// WithUser records the authenticated user on ctx without a tenant stamp.
func WithUser(ctx context.Context, user *domain.UserContext) context.Context {
	s := current(ctx)
	s.user = user
	return context.WithValue(ctx, ctxKey{}, s)
}

// WithTenant records the stamped tenant id on ctx.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	s := current(ctx)
	s.tenantID = tenantID
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the stamped tenant id, if any.
func FromContext(ctx context.Context) (string, bool) {
	s := current(ctx)
	return s.tenantID, s.tenantID != ""
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) *domain.UserContext {
	return current(ctx).user
}

// Scope returns the tenant filter a data-access call must apply. Super admins
// get an empty filter. Any other request without a stamped tenant fails with
// domain.ErrTenantRequired rather than silently reading across tenants.
func Scope(ctx context.Context) (string, error) {
	s := current(ctx)
	if s.tenantID != "" {
		return s.tenantID, nil
	}
	if s.user.IsSuperAdmin() {
		return "", nil
	}
	return "", domain.ErrTenantRequired
}

func current(ctx context.Context) scope {
	s, _ := ctx.Value(ctxKey{}).(scope)
	return s
}

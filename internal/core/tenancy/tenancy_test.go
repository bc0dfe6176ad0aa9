package tenancy

import (
	"context"
	"errors"
	"testing"

	"github.com/tenantcore/platform/internal/core/domain"
)

func TestResolve_PolicyTable(t *testing.T) {
	admin := &domain.UserContext{ID: "u1", Role: domain.RoleAdmin, TenantID: "t1"}
	user := &domain.UserContext{ID: "u2", Role: domain.RoleUser, TenantID: "t2"}
	super := &domain.UserContext{ID: "u3", Role: domain.RoleSuperAdmin, TenantID: "t1"}

	tests := []struct {
		name        string
		user        *domain.UserContext
		skip        bool
		wantTenant  string
		wantStamped bool
	}{
		{"unauthenticated", nil, false, "", false},
		{"unauthenticated skip", nil, true, "", false},
		{"super admin", super, false, "", false},
		{"super admin skip", super, true, "", false},
		{"admin", admin, false, "t1", true},
		{"user", user, false, "t2", true},
		{"admin skip", admin, true, "", false},
		{"user skip", user, true, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, stamped := Resolve(tt.user, tt.skip)
			if got != tt.wantTenant || stamped != tt.wantStamped {
				t.Fatalf("Resolve() = (%q, %v), want (%q, %v)", got, stamped, tt.wantTenant, tt.wantStamped)
			}
		})
	}
}

func TestScope_StampedTenant(t *testing.T) {
	ctx := WithUser(context.Background(), &domain.UserContext{Role: domain.RoleAdmin, TenantID: "t1"})
	ctx = WithTenant(ctx, "t1")

	got, err := Scope(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "t1" {
		t.Fatalf("expected t1, got %q", got)
	}
}

func TestScope_SuperAdminUnfiltered(t *testing.T) {
	ctx := WithUser(context.Background(), &domain.UserContext{Role: domain.RoleSuperAdmin, TenantID: "t1"})

	got, err := Scope(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty filter for super admin, got %q", got)
	}
}

func TestScope_MissingTenantFails(t *testing.T) {
	ctx := WithUser(context.Background(), &domain.UserContext{Role: domain.RoleUser, TenantID: "t1"})

	if _, err := Scope(ctx); !errors.Is(err, domain.ErrTenantRequired) {
		t.Fatalf("expected ErrTenantRequired, got %v", err)
	}
	if _, err := Scope(context.Background()); !errors.Is(err, domain.ErrTenantRequired) {
		t.Fatalf("expected ErrTenantRequired for anonymous context, got %v", err)
	}
}

func TestWithTenant_PreservesUser(t *testing.T) {
	u := &domain.UserContext{ID: "u1", Role: domain.RoleUser, TenantID: "t1"}
	ctx := WithTenant(WithUser(context.Background(), u), "t1")

	if UserFromContext(ctx) != u {
		t.Fatalf("user lost after stamping tenant")
	}
	if id, ok := FromContext(ctx); !ok || id != "t1" {
		t.Fatalf("FromContext() = (%q, %v)", id, ok)
	}
}

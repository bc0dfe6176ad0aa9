package ports

import (
	"context"

	"github.com/tenantcore/platform/internal/core/domain"
)

// CreateTenantInput carries the fields needed to create a tenant.
type CreateTenantInput struct {
	Name     string
	Slug     string
	Settings map[string]any
}

type TenantService interface {
	Create(ctx context.Context, in CreateTenantInput) (*domain.Tenant, error)
	Get(ctx context.Context, id string) (*domain.Tenant, error)
	List(ctx context.Context) ([]*domain.Tenant, error)
	// Current returns the tenant stamped on the request context.
	Current(ctx context.Context) (*domain.Tenant, error)
}

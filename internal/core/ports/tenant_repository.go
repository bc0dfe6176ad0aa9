package ports

import (
	"context"

	"github.com/tenantcore/platform/internal/core/domain"
)

// TenantRepository defines persistence for tenants.
type TenantRepository interface {
	Create(ctx context.Context, t *domain.Tenant) (*domain.Tenant, error)
	FindByID(ctx context.Context, id string) (*domain.Tenant, error)
	List(ctx context.Context) ([]*domain.Tenant, error)
}

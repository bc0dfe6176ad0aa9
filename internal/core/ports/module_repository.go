package ports

import (
	"context"

	"github.com/tenantcore/platform/internal/core/domain"
)

// ModuleRepository persists module descriptors. It also acts as a registry
// source when MODULES_SOURCE=mongo.
type ModuleRepository interface {
	// Upsert inserts or replaces the descriptor keyed by its slug.
	Upsert(ctx context.Context, d domain.ModuleDescriptor) error
	List(ctx context.Context) ([]domain.ModuleDescriptor, error)
}

package modulesource

import (
	"context"

	"github.com/tenantcore/platform/internal/core/domain"
	"github.com/tenantcore/platform/internal/core/registry"
)

// Chain concatenates several sources in order. Any failing source fails the
// whole fetch, so a later source can override an earlier one by slug without
// risking a partial registry.
type Chain []registry.Source

func (c Chain) Fetch(ctx context.Context) ([]domain.ModuleDescriptor, error) {
	var out []domain.ModuleDescriptor
	for _, src := range c {
		descs, err := src.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, descs...)
	}
	return out, nil
}

package modulesource

import (
	"context"
	"fmt"

	"github.com/tenantcore/platform/internal/core/domain"
	"github.com/tenantcore/platform/internal/core/ports"
)

// Repository reads descriptors from the modules collection.
type Repository struct {
	repo ports.ModuleRepository
}

func NewRepository(repo ports.ModuleRepository) *Repository {
	return &Repository{repo: repo}
}

func (s *Repository) Fetch(ctx context.Context) ([]domain.ModuleDescriptor, error) {
	descs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stored modules: %w", err)
	}
	return descs, nil
}

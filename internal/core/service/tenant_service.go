package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tenantcore/platform/internal/core/domain"
	"github.com/tenantcore/platform/internal/core/ports"
	"github.com/tenantcore/platform/internal/core/tenancy"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

type TenantService struct {
	repo ports.TenantRepository
	log  zerolog.Logger
}

func NewTenantService(repo ports.TenantRepository, log zerolog.Logger) *TenantService {
	return &TenantService{repo: repo, log: log}
}

// Create stores a new active tenant. The slug is derived from the name when
// not given.
func (s *TenantService) Create(ctx context.Context, in ports.CreateTenantInput) (*domain.Tenant, error) {
	slug := slugify(in.Slug)
	if slug == "" {
		slug = slugify(in.Name)
	}
	if slug == "" {
		return nil, fmt.Errorf("%w: slug cannot be derived from name", domain.ErrInvalidTenant)
	}

	now := time.Now().UTC()
	t, err := s.repo.Create(ctx, &domain.Tenant{
		Name:      strings.TrimSpace(in.Name),
		Slug:      slug,
		Active:    true,
		Settings:  in.Settings,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("tenant_id", t.ID).Str("slug", t.Slug).Msg("tenant created")
	return t, nil
}

func (s *TenantService) Get(ctx context.Context, id string) (*domain.Tenant, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TenantService) List(ctx context.Context) ([]*domain.Tenant, error) {
	return s.repo.List(ctx)
}

// Current resolves the tenant stamped on ctx. Super admins have none.
func (s *TenantService) Current(ctx context.Context) (*domain.Tenant, error) {
	id, ok := tenancy.FromContext(ctx)
	if !ok {
		return nil, domain.ErrTenantRequired
	}
	return s.repo.FindByID(ctx, id)
}

func slugify(s string) string {
	s = nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	return strings.Trim(s, "-")
}

package ports

import (
	"context"

	"github.com/tenantcore/platform/internal/core/domain"
)

// UserRepository defines persistence for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// SetTwoFactor stores the TOTP secret and its enabled flag.
	SetTwoFactor(ctx context.Context, id, secret string, enabled bool) error
}

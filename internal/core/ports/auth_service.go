package ports

import (
	"context"

	"github.com/tenantcore/platform/internal/core/domain"
)

// LoginResult is returned by AuthService.Login. Exactly one of Token or
// ChallengeID is set.
type LoginResult struct {
	Token       string
	ChallengeID string
	User        *domain.User
}

// TwoFactorSetup carries the provisioning data for an authenticator app.
type TwoFactorSetup struct {
	Secret     string
	OTPAuthURL string
}

// CreateUserInput carries the fields needed to create an account.
type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	Role     domain.Role
	TenantID string
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	VerifyTwoFactor(ctx context.Context, challengeID, code string) (*LoginResult, error)
	SetupTwoFactor(ctx context.Context, userID string) (*TwoFactorSetup, error)
	EnableTwoFactor(ctx context.Context, userID, code string) error
	CreateUser(ctx context.Context, actor *domain.UserContext, in CreateUserInput) (*domain.User, error)
}

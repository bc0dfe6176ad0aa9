package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp/totp"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tenantcore/platform/internal/core/domain"
	"github.com/tenantcore/platform/internal/core/ports"
	"github.com/tenantcore/platform/internal/core/tenancy"
)

// ChallengeStore keeps short-lived two-factor login challenges (Redis).
type ChallengeStore interface {
	Save(ctx context.Context, userID string) (string, error)
	// Consume returns the user id of the challenge and deletes it.
	Consume(ctx context.Context, challengeID string) (string, error)
}

// TokenClaims is the JWT payload issued at login.
type TokenClaims struct {
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	TenantID string      `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// AuthService implements login, two-factor flows and account creation.
type AuthService struct {
	users      ports.UserRepository
	tenants    ports.TenantRepository
	challenges ChallengeStore
	jwtSecret  string
	tokenTTL   time.Duration
	issuer     string
	log        zerolog.Logger
	now        func() time.Time
}

func NewAuthService(
	users ports.UserRepository,
	tenants ports.TenantRepository,
	challenges ChallengeStore,
	jwtSecret string,
	tokenTTL time.Duration,
	issuer string,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:      users,
		tenants:    tenants,
		challenges: challenges,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		issuer:     issuer,
		log:        log,
		now:        time.Now,
	}
}

// Login checks the password. Users with two-factor enabled receive a challenge
// id instead of a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if user.TwoFactorEnabled {
		challengeID, err := s.challenges.Save(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("save login challenge: %w", err)
		}
		s.log.Info().Str("user_id", user.ID).Msg("two-factor challenge issued")
		return &ports.LoginResult{ChallengeID: challengeID, User: user}, nil
	}

	return s.issue(user)
}

// VerifyTwoFactor completes a login started by Login.
func (s *AuthService) VerifyTwoFactor(ctx context.Context, challengeID, code string) (*ports.LoginResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, domain.ErrTwoFactorRequired
	}
	userID, err := s.challenges.Consume(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.TwoFactorEnabled || user.TwoFactorSecret == "" {
		return nil, domain.ErrTwoFactorNotSetUp
	}
	if !totp.Validate(code, user.TwoFactorSecret) {
		s.log.Warn().Str("user_id", user.ID).Msg("invalid two-factor code")
		return nil, domain.ErrInvalidTwoFactorCode
	}

	return s.issue(user)
}

// SetupTwoFactor generates a fresh secret, stored disabled until
// EnableTwoFactor confirms a code from it.
func (s *AuthService) SetupTwoFactor(ctx context.Context, userID string) (*ports.TwoFactorSetup, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: user.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("generate totp key: %w", err)
	}

	if err := s.users.SetTwoFactor(ctx, user.ID, key.Secret(), false); err != nil {
		return nil, fmt.Errorf("store totp secret: %w", err)
	}

	return &ports.TwoFactorSetup{Secret: key.Secret(), OTPAuthURL: key.URL()}, nil
}

// EnableTwoFactor switches two-factor on once code matches the pending secret.
func (s *AuthService) EnableTwoFactor(ctx context.Context, userID, code string) error {
	if strings.TrimSpace(code) == "" {
		return domain.ErrTwoFactorRequired
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.TwoFactorSecret == "" {
		return domain.ErrTwoFactorNotSetUp
	}
	if !totp.Validate(code, user.TwoFactorSecret) {
		return domain.ErrInvalidTwoFactorCode
	}
	if err := s.users.SetTwoFactor(ctx, user.ID, user.TwoFactorSecret, true); err != nil {
		return fmt.Errorf("enable two-factor: %w", err)
	}
	s.log.Info().Str("user_id", user.ID).Msg("two-factor enabled")
	return nil
}

// CreateUser creates an account on behalf of actor. Admins create users inside
// their own tenant only; super admins may target any existing tenant.
func (s *AuthService) CreateUser(ctx context.Context, actor *domain.UserContext, in ports.CreateUserInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	switch {
	case email == "":
		return nil, fmt.Errorf("%w: email is required", domain.ErrInvalidUser)
	case in.Password == "":
		return nil, fmt.Errorf("%w: password is required", domain.ErrInvalidUser)
	case !in.Role.Valid():
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidUser, in.Role)
	}

	tenantID, err := s.targetTenant(ctx, actor, in)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
		Role:         in.Role,
		TenantID:     tenantID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", created.ID).
		Str("role", string(created.Role)).
		Str("tenant_id", created.TenantID).
		Str("created_by", actor.ID).
		Msg("user created")
	return created, nil
}

func (s *AuthService) targetTenant(ctx context.Context, actor *domain.UserContext, in ports.CreateUserInput) (string, error) {
	switch {
	case actor == nil:
		return "", domain.ErrForbidden
	case actor.IsSuperAdmin():
		if in.Role == domain.RoleSuperAdmin {
			return "", nil
		}
		if in.TenantID == "" {
			return "", domain.ErrTenantRequired
		}
		if _, err := s.tenants.FindByID(ctx, in.TenantID); err != nil {
			return "", err
		}
		return in.TenantID, nil
	case actor.Role == domain.RoleAdmin:
		if in.Role == domain.RoleSuperAdmin {
			return "", domain.ErrForbidden
		}
		scoped, err := tenancy.Scope(ctx)
		if err != nil {
			return "", err
		}
		if in.TenantID != "" && in.TenantID != scoped {
			return "", domain.ErrForbidden
		}
		return scoped, nil
	default:
		return "", domain.ErrForbidden
	}
}

func (s *AuthService) issue(user *domain.User) (*ports.LoginResult, error) {
	now := s.now()
	claims := TokenClaims{
		Email:    user.Email,
		Role:     user.Role,
		TenantID: user.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &ports.LoginResult{Token: signed, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

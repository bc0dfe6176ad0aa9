package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp/totp"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tenantcore/platform/internal/core/domain"
	"github.com/tenantcore/platform/internal/core/ports"
	"github.com/tenantcore/platform/internal/core/tenancy"
)

type authFixture struct {
	svc        *AuthService
	users      *stubUserRepo
	tenants    *stubTenantRepo
	challenges *stubChallenges
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:      newStubUserRepo(),
		tenants:    newStubTenantRepo(),
		challenges: newStubChallenges(),
	}
	f.svc = NewAuthService(f.users, f.tenants, f.challenges, "secret", time.Hour, "Platform", zerolog.Nop())
	return f
}

func superCtx() (context.Context, *domain.UserContext) {
	actor := &domain.UserContext{ID: "root", Role: domain.RoleSuperAdmin}
	return tenancy.WithUser(context.Background(), actor), actor
}

func adminCtx(tenantID string) (context.Context, *domain.UserContext) {
	actor := &domain.UserContext{ID: "admin-1", Role: domain.RoleAdmin, TenantID: tenantID}
	ctx := tenancy.WithUser(context.Background(), actor)
	return tenancy.WithTenant(ctx, tenantID), actor
}

func (f *authFixture) seedUser(t *testing.T, email, password string, role domain.Role, tenantID string) *domain.User {
	t.Helper()
	ctx, actor := superCtx()
	u, err := f.svc.CreateUser(ctx, actor, ports.CreateUserInput{Email: email, Password: password, Role: role, TenantID: tenantID})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestAuthService_CreateUser_HashesPassword(t *testing.T) {
	f := newAuthFixture()
	tenant, _ := f.tenants.Create(context.Background(), &domain.Tenant{Slug: "acme"})

	user := f.seedUser(t, " Alice@Example.com ", "pass1234", domain.RoleUser, tenant.ID)

	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalised email, got %q", user.Email)
	}
	if user.PasswordHash == "pass1234" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass1234")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.TenantID != tenant.ID {
		t.Fatalf("expected tenant %s, got %s", tenant.ID, user.TenantID)
	}
}

func TestAuthService_CreateUser_AdminScopedToOwnTenant(t *testing.T) {
	f := newAuthFixture()
	ctx, actor := adminCtx("t1")

	user, err := f.svc.CreateUser(ctx, actor, ports.CreateUserInput{Email: "bob@example.com", Password: "pass1234", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.TenantID != "t1" {
		t.Fatalf("expected stamped tenant t1, got %q", user.TenantID)
	}

	if _, err := f.svc.CreateUser(ctx, actor, ports.CreateUserInput{Email: "eve@example.com", Password: "pass1234", Role: domain.RoleUser, TenantID: "t2"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for foreign tenant, got %v", err)
	}
	if _, err := f.svc.CreateUser(ctx, actor, ports.CreateUserInput{Email: "root@example.com", Password: "pass1234", Role: domain.RoleSuperAdmin}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for super admin creation, got %v", err)
	}
}

func TestAuthService_CreateUser_SuperAdminRules(t *testing.T) {
	f := newAuthFixture()
	ctx, actor := superCtx()

	if _, err := f.svc.CreateUser(ctx, actor, ports.CreateUserInput{Email: "a@example.com", Password: "pass1234", Role: domain.RoleAdmin}); !errors.Is(err, domain.ErrTenantRequired) {
		t.Fatalf("expected ErrTenantRequired, got %v", err)
	}
	if _, err := f.svc.CreateUser(ctx, actor, ports.CreateUserInput{Email: "a@example.com", Password: "pass1234", Role: domain.RoleAdmin, TenantID: "missing"}); !errors.Is(err, domain.ErrTenantNotFound) {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}
	root, err := f.svc.CreateUser(ctx, actor, ports.CreateUserInput{Email: "ops@example.com", Password: "pass1234", Role: domain.RoleSuperAdmin, TenantID: "ignored"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if root.TenantID != "" {
		t.Fatalf("super admin must not belong to a tenant, got %q", root.TenantID)
	}
}

func TestAuthService_CreateUser_Validation(t *testing.T) {
	f := newAuthFixture()
	ctx, actor := superCtx()

	if _, err := f.svc.CreateUser(ctx, actor, ports.CreateUserInput{Email: "", Password: "x", Role: domain.RoleUser}); !errors.Is(err, domain.ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser, got %v", err)
	}
	if _, err := f.svc.CreateUser(ctx, actor, ports.CreateUserInput{Email: "a@b.c", Password: "", Role: domain.RoleUser}); !errors.Is(err, domain.ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser for empty password, got %v", err)
	}
	if _, err := f.svc.CreateUser(ctx, actor, ports.CreateUserInput{Email: "a@b.c", Password: "x", Role: "OWNER"}); !errors.Is(err, domain.ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser for bad role, got %v", err)
	}
	userCtx := tenancy.WithUser(context.Background(), &domain.UserContext{Role: domain.RoleUser, TenantID: "t1"})
	if _, err := f.svc.CreateUser(userCtx, &domain.UserContext{Role: domain.RoleUser}, ports.CreateUserInput{Email: "a@b.c", Password: "x", Role: domain.RoleUser}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for plain user, got %v", err)
	}
}

func TestAuthService_Login_IssuesToken(t *testing.T) {
	f := newAuthFixture()
	tenant, _ := f.tenants.Create(context.Background(), &domain.Tenant{Slug: "acme"})
	user := f.seedUser(t, "carol@example.com", "s3cret!!", domain.RoleAdmin, tenant.ID)

	res, err := f.svc.Login(context.Background(), "carol@example.com", "s3cret!!")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.Token == "" || res.ChallengeID != "" {
		t.Fatalf("expected token only, got %+v", res)
	}

	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(res.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.Subject != user.ID || claims.Role != domain.RoleAdmin || claims.TenantID != tenant.ID {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Sub(claims.IssuedAt.Time) != time.Hour {
		t.Fatalf("expected one hour ttl, got %+v", claims.RegisteredClaims)
	}
}

func TestAuthService_Login_Failures(t *testing.T) {
	f := newAuthFixture()
	tenant, _ := f.tenants.Create(context.Background(), &domain.Tenant{Slug: "acme"})
	f.seedUser(t, "dave@example.com", "goodpass", domain.RoleUser, tenant.ID)

	if _, err := f.svc.Login(context.Background(), "dave@example.com", "badpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := f.svc.Login(context.Background(), "ghost@example.com", "pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email must look like a bad password, got %v", err)
	}
	if _, err := f.svc.Login(context.Background(), "", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty input, got %v", err)
	}
}

func TestAuthService_TwoFactorFlow(t *testing.T) {
	f := newAuthFixture()
	tenant, _ := f.tenants.Create(context.Background(), &domain.Tenant{Slug: "acme"})
	user := f.seedUser(t, "erin@example.com", "pass1234", domain.RoleUser, tenant.ID)
	ctx := context.Background()

	setup, err := f.svc.SetupTwoFactor(ctx, user.ID)
	if err != nil {
		t.Fatalf("SetupTwoFactor: %v", err)
	}
	if setup.Secret == "" || setup.OTPAuthURL == "" {
		t.Fatalf("incomplete setup: %+v", setup)
	}

	// Pending secret does not change login yet.
	res, err := f.svc.Login(ctx, "erin@example.com", "pass1234")
	if err != nil || res.Token == "" {
		t.Fatalf("expected plain login before enabling, got %+v, %v", res, err)
	}

	if err := f.svc.EnableTwoFactor(ctx, user.ID, ""); !errors.Is(err, domain.ErrTwoFactorRequired) {
		t.Fatalf("expected ErrTwoFactorRequired, got %v", err)
	}
	if err := f.svc.EnableTwoFactor(ctx, user.ID, "000000"); !errors.Is(err, domain.ErrInvalidTwoFactorCode) {
		t.Fatalf("expected ErrInvalidTwoFactorCode, got %v", err)
	}
	code, err := totp.GenerateCode(setup.Secret, time.Now())
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	if err := f.svc.EnableTwoFactor(ctx, user.ID, code); err != nil {
		t.Fatalf("EnableTwoFactor: %v", err)
	}

	res, err = f.svc.Login(ctx, "erin@example.com", "pass1234")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token != "" || res.ChallengeID == "" {
		t.Fatalf("expected challenge only, got %+v", res)
	}

	// A missing code leaves the challenge usable.
	if _, err := f.svc.VerifyTwoFactor(ctx, res.ChallengeID, "  "); !errors.Is(err, domain.ErrTwoFactorRequired) {
		t.Fatalf("expected ErrTwoFactorRequired, got %v", err)
	}
	verified, err := f.svc.VerifyTwoFactor(ctx, res.ChallengeID, code)
	if err != nil {
		t.Fatalf("VerifyTwoFactor: %v", err)
	}
	if verified.Token == "" {
		t.Fatalf("expected token after verification")
	}

	if _, err := f.svc.VerifyTwoFactor(ctx, res.ChallengeID, code); !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Fatalf("challenge must be single use, got %v", err)
	}
}

func TestAuthService_EnableTwoFactor_WithoutSetup(t *testing.T) {
	f := newAuthFixture()
	ctx, actor := superCtx()
	user, _ := f.svc.CreateUser(ctx, actor, ports.CreateUserInput{Email: "ops@example.com", Password: "pass1234", Role: domain.RoleSuperAdmin})

	if err := f.svc.EnableTwoFactor(context.Background(), user.ID, "123456"); !errors.Is(err, domain.ErrTwoFactorNotSetUp) {
		t.Fatalf("expected ErrTwoFactorNotSetUp, got %v", err)
	}
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/tenantcore/platform/internal/api/middleware"
	"github.com/tenantcore/platform/internal/core/domain"
	"github.com/tenantcore/platform/internal/core/ports"
	"github.com/tenantcore/platform/internal/core/registry"
	"github.com/tenantcore/platform/internal/core/tenancy"
)

// newContext builds an echo context as the middleware chain would leave it:
// user attached and, when tenantID is non-empty, the tenant stamped.
func newContext(method, target, body string, user *domain.UserContext, tenantID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := req.Context()
	if user != nil {
		ctx = tenancy.WithUser(ctx, user)
	}
	if tenantID != "" {
		ctx = tenancy.WithTenant(ctx, tenantID)
	}
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(middleware.UserKey, user)
	}
	return c, rec
}

func httpCode(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return 0
}

var (
	adminUser = &domain.UserContext{ID: "admin-1", Email: "admin@acme.test", Role: domain.RoleAdmin, TenantID: "t-acme"}
	superUser = &domain.UserContext{ID: "root", Email: "root@platform.test", Role: domain.RoleSuperAdmin}
)

// --- auth ---

type stubAuthService struct {
	loginResult *ports.LoginResult
	err         error

	gotEmail, gotPassword string
	gotActor              *domain.UserContext
	gotInput              ports.CreateUserInput
	gotCode               string
}

func (s *stubAuthService) Login(_ context.Context, email, password string) (*ports.LoginResult, error) {
	s.gotEmail, s.gotPassword = email, password
	return s.loginResult, s.err
}

func (s *stubAuthService) VerifyTwoFactor(_ context.Context, _, code string) (*ports.LoginResult, error) {
	s.gotCode = code
	return s.loginResult, s.err
}

func (s *stubAuthService) SetupTwoFactor(_ context.Context, _ string) (*ports.TwoFactorSetup, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ports.TwoFactorSetup{Secret: "SECRET", OTPAuthURL: "otpauth://totp/Platform:x?secret=SECRET"}, nil
}

func (s *stubAuthService) EnableTwoFactor(_ context.Context, _, code string) error {
	s.gotCode = code
	return s.err
}

func (s *stubAuthService) CreateUser(_ context.Context, actor *domain.UserContext, in ports.CreateUserInput) (*domain.User, error) {
	s.gotActor, s.gotInput = actor, in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.User{ID: "new-1", Email: in.Email, Role: in.Role, TenantID: in.TenantID, PasswordHash: "hash"}, nil
}

// --- tenants ---

type stubTenantService struct {
	tenants map[string]*domain.Tenant
	created ports.CreateTenantInput
}

func (s *stubTenantService) Create(_ context.Context, in ports.CreateTenantInput) (*domain.Tenant, error) {
	s.created = in
	return &domain.Tenant{ID: "t-new", Name: in.Name, Slug: in.Slug, Active: true}, nil
}

func (s *stubTenantService) Get(_ context.Context, id string) (*domain.Tenant, error) {
	t, ok := s.tenants[id]
	if !ok {
		return nil, domain.ErrTenantNotFound
	}
	return t, nil
}

func (s *stubTenantService) List(context.Context) ([]*domain.Tenant, error) {
	out := make([]*domain.Tenant, 0, len(s.tenants))
	for _, t := range s.tenants {
		out = append(out, t)
	}
	return out, nil
}

func (s *stubTenantService) Current(ctx context.Context) (*domain.Tenant, error) {
	id, ok := tenancy.FromContext(ctx)
	if !ok {
		return nil, domain.ErrTenantRequired
	}
	return s.Get(ctx, id)
}

// --- notifications ---

type stubNotificationService struct {
	list  []*domain.Notification
	count int64
	err   error

	gotUnread bool
	gotLimit  int
	gotID     string
}

func (s *stubNotificationService) Create(_ context.Context, in ports.NotificationInput) (*domain.Notification, error) {
	return &domain.Notification{ID: in.ID, Title: in.Title}, s.err
}

func (s *stubNotificationService) List(_ context.Context, _ *domain.UserContext, unreadOnly bool, limit int) ([]*domain.Notification, error) {
	s.gotUnread, s.gotLimit = unreadOnly, limit
	return s.list, s.err
}

func (s *stubNotificationService) UnreadCount(context.Context, *domain.UserContext) (int64, error) {
	return s.count, s.err
}

func (s *stubNotificationService) MarkRead(_ context.Context, _ *domain.UserContext, id string) error {
	s.gotID = id
	return s.err
}

func (s *stubNotificationService) MarkAllRead(context.Context, *domain.UserContext) (int64, error) {
	return s.count, s.err
}

type stubQueue struct {
	mu  sync.Mutex
	got []ports.NotificationInput
	err error
}

func (q *stubQueue) Enqueue(n ports.NotificationInput) error {
	if q.err != nil {
		return q.err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.got = append(q.got, n)
	return nil
}

// --- modules ---

type stubModuleRepo struct {
	upserted []domain.ModuleDescriptor
	err      error
}

func (r *stubModuleRepo) Upsert(_ context.Context, d domain.ModuleDescriptor) error {
	if r.err != nil {
		return r.err
	}
	r.upserted = append(r.upserted, d)
	return nil
}

func (r *stubModuleRepo) List(context.Context) ([]domain.ModuleDescriptor, error) {
	return r.upserted, r.err
}

// stubLoader applies registrations straight to reg and answers Load with n/err.
type stubLoader struct {
	reg *registry.Registry
	n   int
	err error
}

func (l *stubLoader) Load(context.Context) (int, error) { return l.n, l.err }

func (l *stubLoader) Register(_ context.Context, d domain.ModuleDescriptor) error {
	if l.reg == nil {
		return nil
	}
	return l.reg.Register(d)
}

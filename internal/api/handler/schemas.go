package handler

import (
	"time"

	"github.com/tenantcore/platform/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- auth ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type verifyTwoFactorRequest struct {
	ChallengeID string `json:"challenge_id" validate:"required,uuid4"`
	Code        string `json:"code"         validate:"required,len=6,numeric"`
}

type enableTwoFactorRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

type loginResponse struct {
	Token             string        `json:"token,omitempty"`
	TwoFactorRequired bool          `json:"two_factor_required,omitempty"`
	ChallengeID       string        `json:"challenge_id,omitempty"`
	User              *userResponse `json:"user,omitempty"`
}

type twoFactorSetupResponse struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
}

type createUserRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Name     string `json:"name"      validate:"max=120"`
	Password string `json:"password"  validate:"required,min=8,max=72"`
	Role     string `json:"role"      validate:"required,oneof=USER ADMIN SUPER_ADMIN"`
	TenantID string `json:"tenant_id" validate:"omitempty,max=64"`
}

type userResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name,omitempty"`
	Role             string    `json:"role"`
	TenantID         string    `json:"tenant_id,omitempty"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	CreatedAt        time.Time `json:"created_at"`
}

func toUserResponse(u *domain.User) *userResponse {
	if u == nil {
		return nil
	}
	return &userResponse{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		Role:             string(u.Role),
		TenantID:         u.TenantID,
		TwoFactorEnabled: u.TwoFactorEnabled,
		CreatedAt:        u.CreatedAt,
	}
}

// --- modules ---

type pageRequest struct {
	Path       string `json:"path"       validate:"required,startswith=/"`
	Title      string `json:"title"      validate:"required"`
	Permission string `json:"permission" validate:"omitempty,oneof=USER ADMIN SUPER_ADMIN"`
}

type widgetRequest struct {
	ID    string `json:"id"    validate:"required"`
	Title string `json:"title" validate:"required"`
	Size  string `json:"size"  validate:"omitempty,oneof=small medium large full"`
}

type registerModuleRequest struct {
	Slug              string          `json:"slug"               validate:"required,max=64"`
	DisplayName       string          `json:"display_name"       validate:"required"`
	Version           string          `json:"version"            validate:"required"`
	Enabled           bool            `json:"enabled"`
	PermissionsStrict bool            `json:"permissions_strict"`
	Sandboxed         bool            `json:"sandboxed"`
	Pages             []pageRequest   `json:"pages"              validate:"dive"`
	Widgets           []widgetRequest `json:"widgets"            validate:"dive"`
}

func (r registerModuleRequest) toDomain() domain.ModuleDescriptor {
	d := domain.ModuleDescriptor{
		Slug:              r.Slug,
		DisplayName:       r.DisplayName,
		Version:           r.Version,
		Enabled:           r.Enabled,
		PermissionsStrict: r.PermissionsStrict,
		Sandboxed:         r.Sandboxed,
	}
	for _, p := range r.Pages {
		d.Pages = append(d.Pages, domain.PageDecl{Path: p.Path, Title: p.Title, Permission: p.Permission})
	}
	for _, w := range r.Widgets {
		d.Widgets = append(d.Widgets, domain.WidgetDecl{ID: w.ID, Title: w.Title, Size: w.Size})
	}
	return d
}

type listModulesResponse struct {
	Data []domain.ModuleDescriptor `json:"data"`
}

type reloadResponse struct {
	Loaded int `json:"loaded"`
}

// --- tenants ---

type createTenantRequest struct {
	Name     string         `json:"name"     validate:"required,max=120"`
	Slug     string         `json:"slug"     validate:"omitempty,max=64"`
	Settings map[string]any `json:"settings"`
}

type listTenantsResponse struct {
	Data []*domain.Tenant `json:"data"`
}

// --- notifications ---

type createNotificationRequest struct {
	Title       string         `json:"title"       validate:"required,max=200"`
	Description string         `json:"description" validate:"max=2000"`
	Type        string         `json:"type"        validate:"omitempty,oneof=info success warning error"`
	UserID      string         `json:"user_id"     validate:"omitempty,max=64"`
	// TenantID is only honoured for super admins; everyone else targets the
	// stamped tenant.
	TenantID string         `json:"tenant_id" validate:"omitempty,max=64"`
	Metadata map[string]any `json:"metadata"`
}

type acceptedResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

type listNotificationsResponse struct {
	Data []*domain.Notification `json:"data"`
}

type unreadCountResponse struct {
	Unread int64 `json:"unread"`
}

type markAllReadResponse struct {
	Updated int64 `json:"updated"`
}

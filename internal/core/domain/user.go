package domain

import (
	"errors"
	"time"
)

// Role is the coarse permission level of a user.
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("user already exists")
	ErrInvalidUser          = errors.New("invalid user")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrForbidden            = errors.New("access forbidden")
	ErrTwoFactorRequired    = errors.New("two-factor code required")
	ErrInvalidTwoFactorCode = errors.New("invalid two-factor code")
	ErrTwoFactorNotSetUp    = errors.New("two-factor authentication not set up")
	ErrChallengeNotFound    = errors.New("login challenge not found or expired")
)

// User models an account stored in the users collection.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name,omitempty"`
	PasswordHash     string    `json:"-"`
	Role             Role      `json:"role"`
	TenantID         string    `json:"tenant_id,omitempty"`
	TwoFactorSecret  string    `json:"-"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// UserContext is the request-scoped identity attached by the auth guard.
// It is never persisted.
type UserContext struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	TenantID string `json:"tenant_id,omitempty"`
}

// IsSuperAdmin reports whether the context belongs to a cross-tenant operator.
func (u *UserContext) IsSuperAdmin() bool {
	return u != nil && u.Role == RoleSuperAdmin
}

// Context builds the request identity for u.
func (u *User) Context() *UserContext {
	return &UserContext{
		ID:       u.ID,
		Email:    u.Email,
		Role:     u.Role,
		TenantID: u.TenantID,
	}
}

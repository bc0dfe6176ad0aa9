package domain

import (
	"errors"
	"time"
)

var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrTenantExists   = errors.New("tenant already exists")
	ErrInvalidTenant  = errors.New("invalid tenant")
	// ErrTenantRequired is returned when tenant-owned data is accessed by a
	// request that carries no tenant scope.
	ErrTenantRequired = errors.New("tenant scope required")
)

// Tenant is an isolated customer organisation.
type Tenant struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Slug      string         `json:"slug"`
	Active    bool           `json:"active"`
	Settings  map[string]any `json:"settings,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

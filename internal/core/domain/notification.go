package domain

import (
	"errors"
	"time"
)

// NotificationType classifies how a notification is rendered.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Notification is created by producers and afterwards only ever has its read
// state flipped.
type Notification struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Type        NotificationType `json:"type"`
	TenantID    string           `json:"tenant_id,omitempty"`
	UserID      string           `json:"user_id,omitempty"`
	Read        bool             `json:"read"`
	ReadAt      *time.Time       `json:"read_at,omitempty"`
	Metadata    map[string]any   `json:"metadata,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

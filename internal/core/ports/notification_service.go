package ports

import (
	"context"

	"github.com/tenantcore/platform/internal/core/domain"
)

// NotificationInput is the DTO handed from producers to NotificationService.
type NotificationInput struct {
	ID          string
	Title       string
	Description string
	Type        domain.NotificationType
	TenantID    string // empty = tenant-less (super admin audience)
	UserID      string // empty = whole tenant
	Metadata    map[string]any
}

// NotificationService stores notifications and serves the read side.
type NotificationService interface {
	Create(ctx context.Context, in NotificationInput) (*domain.Notification, error)
	List(ctx context.Context, user *domain.UserContext, unreadOnly bool, limit int) ([]*domain.Notification, error)
	UnreadCount(ctx context.Context, user *domain.UserContext) (int64, error)
	MarkRead(ctx context.Context, user *domain.UserContext, id string) error
	MarkAllRead(ctx context.Context, user *domain.UserContext) (int64, error)
}

package ports

import (
	"context"
	"time"

	"github.com/tenantcore/platform/internal/core/domain"
)

// NotificationFilter selects the notifications visible to one user.
// TenantID is always set by the service from the request scope; empty means
// tenant-less notifications only (super admin view).
type NotificationFilter struct {
	TenantID   string
	UserID     string
	UnreadOnly bool
	Limit      int
}

// NotificationRepository persists notifications. The only mutation after
// Insert is marking as read.
type NotificationRepository interface {
	Insert(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, filter NotificationFilter) ([]*domain.Notification, error)
	CountUnread(ctx context.Context, filter NotificationFilter) (int64, error)
	// MarkRead flips the notification identified by id, provided it is visible
	// under filter. Returns domain.ErrNotificationNotFound otherwise.
	MarkRead(ctx context.Context, id string, filter NotificationFilter, at time.Time) error
	MarkAllRead(ctx context.Context, filter NotificationFilter, at time.Time) (int64, error)
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tenantcore/platform/internal/core/domain"
	"github.com/tenantcore/platform/internal/core/ports"
	"github.com/tenantcore/platform/internal/core/tenancy"
	"github.com/tenantcore/platform/internal/infrastructure/metrics"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

type notificationService struct {
	repo ports.NotificationRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewNotificationService returns a NotificationService implementation.
func NewNotificationService(repo ports.NotificationRepository, log zerolog.Logger) ports.NotificationService {
	return &notificationService{repo: repo, log: log, now: time.Now}
}

// Create persists a notification. Producers may pre-assign the id so it can be
// returned before asynchronous persistence completes.
func (s *notificationService) Create(ctx context.Context, in ports.NotificationInput) (*domain.Notification, error) {
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	typ := in.Type
	if typ == "" {
		typ = domain.NotificationInfo
	}

	now := s.now().UTC()
	n := &domain.Notification{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Type:        typ,
		TenantID:    in.TenantID,
		UserID:      in.UserID,
		Metadata:    in.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}

	metrics.NotificationsCreatedTotal.WithLabelValues(string(n.Type)).Inc()
	s.log.Debug().Str("notification_id", n.ID).Str("tenant_id", n.TenantID).Msg("notification stored")
	return n, nil
}

func (s *notificationService) List(ctx context.Context, user *domain.UserContext, unreadOnly bool, limit int) ([]*domain.Notification, error) {
	filter, err := s.filter(ctx, user)
	if err != nil {
		return nil, err
	}
	filter.UnreadOnly = unreadOnly
	filter.Limit = clampLimit(limit)
	return s.repo.List(ctx, filter)
}

func (s *notificationService) UnreadCount(ctx context.Context, user *domain.UserContext) (int64, error) {
	filter, err := s.filter(ctx, user)
	if err != nil {
		return 0, err
	}
	filter.UnreadOnly = true
	return s.repo.CountUnread(ctx, filter)
}

func (s *notificationService) MarkRead(ctx context.Context, user *domain.UserContext, id string) error {
	filter, err := s.filter(ctx, user)
	if err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, id, filter, s.now().UTC())
}

func (s *notificationService) MarkAllRead(ctx context.Context, user *domain.UserContext) (int64, error) {
	filter, err := s.filter(ctx, user)
	if err != nil {
		return 0, err
	}
	return s.repo.MarkAllRead(ctx, filter, s.now().UTC())
}

// filter scopes every read to the request tenant and the calling user.
func (s *notificationService) filter(ctx context.Context, user *domain.UserContext) (ports.NotificationFilter, error) {
	if user == nil {
		return ports.NotificationFilter{}, domain.ErrForbidden
	}
	tenantID, err := tenancy.Scope(ctx)
	if err != nil {
		return ports.NotificationFilter{}, err
	}
	return ports.NotificationFilter{TenantID: tenantID, UserID: user.ID}, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultNotificationLimit
	case limit > maxNotificationLimit:
		return maxNotificationLimit
	default:
		return limit
	}
}

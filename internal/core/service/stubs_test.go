package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tenantcore/platform/internal/core/domain"
	"github.com/tenantcore/platform/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stubs shared by the service tests
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users map[string]*domain.User // by id
	seq   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	created := cloneUser(user)
	created.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[created.ID] = cloneUser(created)
	return created, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) SetTwoFactor(_ context.Context, id, secret string, enabled bool) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.TwoFactorSecret = secret
	u.TwoFactorEnabled = enabled
	return nil
}

type stubTenantRepo struct {
	byID map[string]*domain.Tenant
	seq  int
}

func newStubTenantRepo() *stubTenantRepo {
	return &stubTenantRepo{byID: make(map[string]*domain.Tenant)}
}

func (r *stubTenantRepo) Create(_ context.Context, t *domain.Tenant) (*domain.Tenant, error) {
	for _, existing := range r.byID {
		if existing.Slug == t.Slug {
			return nil, domain.ErrTenantExists
		}
	}
	r.seq++
	clone := *t
	clone.ID = fmt.Sprintf("tenant-%d", r.seq)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubTenantRepo) FindByID(_ context.Context, id string) (*domain.Tenant, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrTenantNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *stubTenantRepo) List(_ context.Context) ([]*domain.Tenant, error) {
	out := make([]*domain.Tenant, 0, len(r.byID))
	for _, t := range r.byID {
		clone := *t
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type stubChallenges struct {
	byID map[string]string
	seq  int
}

func newStubChallenges() *stubChallenges {
	return &stubChallenges{byID: make(map[string]string)}
}

func (c *stubChallenges) Save(_ context.Context, userID string) (string, error) {
	c.seq++
	id := fmt.Sprintf("challenge-%d", c.seq)
	c.byID[id] = userID
	return id, nil
}

func (c *stubChallenges) Consume(_ context.Context, id string) (string, error) {
	userID, ok := c.byID[id]
	if !ok {
		return "", domain.ErrChallengeNotFound
	}
	delete(c.byID, id)
	return userID, nil
}

// stubNotificationRepo mirrors the visibility rules of the Mongo query:
// same tenant, and addressed to the user or to nobody in particular.
type stubNotificationRepo struct {
	items     []*domain.Notification
	insertErr error
}

func visible(n *domain.Notification, f ports.NotificationFilter) bool {
	if n.TenantID != f.TenantID {
		return false
	}
	if n.UserID != "" && n.UserID != f.UserID {
		return false
	}
	return !f.UnreadOnly || !n.Read
}

func (r *stubNotificationRepo) Insert(_ context.Context, n *domain.Notification) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	clone := *n
	r.items = append(r.items, &clone)
	return nil
}

func (r *stubNotificationRepo) List(_ context.Context, f ports.NotificationFilter) ([]*domain.Notification, error) {
	var out []*domain.Notification
	for i := len(r.items) - 1; i >= 0; i-- {
		if visible(r.items[i], f) {
			clone := *r.items[i]
			out = append(out, &clone)
		}
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (r *stubNotificationRepo) CountUnread(_ context.Context, f ports.NotificationFilter) (int64, error) {
	f.UnreadOnly = true
	var n int64
	for _, item := range r.items {
		if visible(item, f) {
			n++
		}
	}
	return n, nil
}

func (r *stubNotificationRepo) MarkRead(_ context.Context, id string, f ports.NotificationFilter, at time.Time) error {
	for _, item := range r.items {
		if item.ID == id && visible(item, f) {
			item.Read = true
			item.ReadAt = &at
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

func (r *stubNotificationRepo) MarkAllRead(_ context.Context, f ports.NotificationFilter, at time.Time) (int64, error) {
	f.UnreadOnly = true
	var n int64
	for _, item := range r.items {
		if visible(item, f) {
			item.Read = true
			item.ReadAt = &at
			n++
		}
	}
	return n, nil
}

package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tenantcore/platform/internal/core/domain"
	"github.com/tenantcore/platform/internal/core/ports"
)

const notificationsCollection = "notifications"

// NotificationRepository implements ports.NotificationRepository using MongoDB.
type NotificationRepository struct {
	coll *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{coll: db.Collection(notificationsCollection)}
}

// tenant_id and user_id are always written, empty meaning "none", so the
// visibility filter can match them by equality.
type mongoNotification struct {
	ID          string         `bson:"_id"`
	Title       string         `bson:"title"`
	Description string         `bson:"description"`
	Type        string         `bson:"type"`
	TenantID    string         `bson:"tenant_id"`
	UserID      string         `bson:"user_id"`
	Read        bool           `bson:"read"`
	ReadAt      *time.Time     `bson:"read_at,omitempty"`
	Metadata    map[string]any `bson:"metadata,omitempty"`
	CreatedAt   time.Time      `bson:"created_at"`
	UpdatedAt   time.Time      `bson:"updated_at"`
}

func (mn mongoNotification) toDomain() *domain.Notification {
	n := &domain.Notification{
		ID:          mn.ID,
		Title:       mn.Title,
		Description: mn.Description,
		Type:        domain.NotificationType(mn.Type),
		TenantID:    mn.TenantID,
		UserID:      mn.UserID,
		Read:        mn.Read,
		Metadata:    mn.Metadata,
		CreatedAt:   mn.CreatedAt.UTC(),
		UpdatedAt:   mn.UpdatedAt.UTC(),
	}
	if mn.ReadAt != nil {
		at := mn.ReadAt.UTC()
		n.ReadAt = &at
	}
	return n
}

func (r *NotificationRepository) Insert(ctx context.Context, n *domain.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, mongoNotification{
		ID:          n.ID,
		Title:       n.Title,
		Description: n.Description,
		Type:        string(n.Type),
		TenantID:    n.TenantID,
		UserID:      n.UserID,
		Read:        n.Read,
		ReadAt:      n.ReadAt,
		Metadata:    n.Metadata,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Same id delivered twice; the first write stands.
			return nil
		}
		return err
	}
	return nil
}

func (r *NotificationRepository) List(ctx context.Context, f ports.NotificationFilter) ([]*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	cur, err := r.coll.Find(ctx, visibilityFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoNotification
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	out := make([]*domain.Notification, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, f ports.NotificationFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	f.UnreadOnly = true
	return r.coll.CountDocuments(ctx, visibilityFilter(f))
}

// MarkRead only touches read, read_at and updated_at.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string, f ports.NotificationFilter, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := visibilityFilter(f)
	filter["_id"] = id

	res, err := r.coll.UpdateOne(ctx, filter, readUpdate(at))
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, f ports.NotificationFilter, at time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	f.UnreadOnly = true
	res, err := r.coll.UpdateMany(ctx, visibilityFilter(f), readUpdate(at))
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return res.ModifiedCount, nil
}

// EnsureIndexes supports the per-tenant, newest-first listing.
func (r *NotificationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "read", Value: 1}}},
	})
	return err
}

// visibilityFilter scopes a query to one tenant (empty = tenant-less) and to
// notifications addressed either to the user or to nobody in particular.
func visibilityFilter(f ports.NotificationFilter) bson.M {
	filter := bson.M{
		"tenant_id": f.TenantID,
		"user_id":   bson.M{"$in": bson.A{"", f.UserID}},
	}
	if f.UnreadOnly {
		filter["read"] = false
	}
	return filter
}

func readUpdate(at time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"read":       true,
		"read_at":    at,
		"updated_at": at,
	}}
}

package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tenantcore/platform/internal/core/domain"
)

const modulesCollection = "modules"

// ModuleRepository stores descriptors keyed by slug. Documents use the
// descriptor's own bson tags plus bookkeeping timestamps.
type ModuleRepository struct {
	coll *mongo.Collection
}

func NewModuleRepository(db *mongo.Database) *ModuleRepository {
	return &ModuleRepository{coll: db.Collection(modulesCollection)}
}

type mongoModule struct {
	domain.ModuleDescriptor `bson:",inline"`
	CreatedAt               time.Time `bson:"created_at"`
	UpdatedAt               time.Time `bson:"updated_at"`
}

func (r *ModuleRepository) Upsert(ctx context.Context, d domain.ModuleDescriptor) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	set, err := toBSONMap(d)
	if err != nil {
		return err
	}
	set["updated_at"] = now

	_, err = r.coll.UpdateOne(ctx,
		bson.M{"slug": d.Slug},
		bson.M{"$set": set, "$setOnInsert": bson.M{"created_at": now}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert module: %w", err)
	}
	return nil
}

// List returns descriptors in creation order, matching registry insertion order.
func (r *ModuleRepository) List(ctx context.Context) ([]domain.ModuleDescriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoModule
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode modules: %w", err)
	}
	out := make([]domain.ModuleDescriptor, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ModuleDescriptor)
	}
	return out, nil
}

// EnsureIndexes creates the unique slug index.
func (r *ModuleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func toBSONMap(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal module: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshal module: %w", err)
	}
	return m, nil
}

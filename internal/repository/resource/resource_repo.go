package resource

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ikhtibar/internal/model/resource"
)

// ResourceRepo persists media resources.
type ResourceRepo struct {
	collection *mongo.Collection
}

// NewResourceRepo creates the resource repository.
func NewResourceRepo(db *mongo.Database) *ResourceRepo {
	var m resource.Resource
	return &ResourceRepo{
		collection: db.Collection(m.Collection()),
	}
}

// Create inserts a resource.
func (r *ResourceRepo) Create(ctx context.Context, res *resource.Resource) error {
	now := time.Now()
	if res.CreatedAt.IsZero() {
		res.CreatedAt = now
	}
	res.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, res)
	return err
}

// FindByID looks a resource up by ID. Soft-deleted resources are excluded.
func (r *ResourceRepo) FindByID(ctx context.Context, id string) (*resource.Resource, error) {
	var res resource.Resource
	err := r.collection.FindOne(ctx, bson.M{
		"_id":        id,
		"deleted_at": bson.M{"$exists": false},
	}).Decode(&res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// FindBySHA256 returns a ready resource with the given content hash, for dedup.
func (r *ResourceRepo) FindBySHA256(ctx context.Context, sha256 string) (*resource.Resource, error) {
	var res resource.Resource
	err := r.collection.FindOne(ctx, bson.M{
		"sha256":     sha256,
		"status":     resource.ResourceStatusReady,
		"deleted_at": bson.M{"$exists": false},
	}).Decode(&res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ListByUser returns a user's resources newest first.
func (r *ResourceRepo) ListByUser(ctx context.Context, userID string, page, pageSize int64) ([]*resource.Resource, int64, error) {
	filter := bson.M{
		"user_id":    userID,
		"deleted_at": bson.M{"$exists": false},
	}
	return r.list(ctx, filter, page, pageSize)
}

// List returns all resources newest first.
func (r *ResourceRepo) List(ctx context.Context, page, pageSize int64) ([]*resource.Resource, int64, error) {
	filter := bson.M{"deleted_at": bson.M{"$exists": false}}
	return r.list(ctx, filter, page, pageSize)
}

func (r *ResourceRepo) list(ctx context.Context, filter bson.M, page, pageSize int64) ([]*resource.Resource, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "created_at", Value: -1}}).
		SetLimit(pageSize).
		SetSkip((page - 1) * pageSize)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var resources []*resource.Resource
	if err := cursor.All(ctx, &resources); err != nil {
		return nil, 0, err
	}

	return resources, total, nil
}

// Update overwrites mutable fields and bumps updated_at.
func (r *ResourceRepo) Update(ctx context.Context, id string, update bson.M) error {
	update["updated_at"] = time.Now()
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": update},
	)
	return err
}

// SoftDelete marks a resource deleted without removing the stored object.
func (r *ResourceRepo) SoftDelete(ctx context.Context, id string) error {
	now := time.Now()
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "deleted_at": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{
			"deleted_at": now,
			"updated_at": now,
			"status":     resource.ResourceStatusDeleted,
		}},
	)
	return err
}

package auth

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ikhtibar/internal/model/auth"
)

// PermissionRepo persists the permission catalogue.
type PermissionRepo struct {
	collection *mongo.Collection
}

// NewPermissionRepo creates the permission repository.
func NewPermissionRepo(db *mongo.Database) *PermissionRepo {
	return &PermissionRepo{
		collection: db.Collection("permissions"),
	}
}

// Create inserts a permission.
func (r *PermissionRepo) Create(ctx context.Context, perm *auth.Permission) error {
	perm.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, perm)
	return err
}

// FindByCode looks a permission up by its unique code.
func (r *PermissionRepo) FindByCode(ctx context.Context, code string) (*auth.Permission, error) {
	var perm auth.Permission
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&perm)
	if err != nil {
		return nil, err
	}
	return &perm, nil
}

// List returns the catalogue sorted by category then code.
func (r *PermissionRepo) List(ctx context.Context) ([]*auth.Permission, error) {
	opts := options.Find().SetSort(bson.D{
		bson.E{Key: "category", Value: 1},
		bson.E{Key: "code", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var perms []*auth.Permission
	if err := cursor.All(ctx, &perms); err != nil {
		return nil, err
	}
	return perms, nil
}

// Exists reports whether a permission code exists.
func (r *PermissionRepo) Exists(ctx context.Context, code string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"code": code})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

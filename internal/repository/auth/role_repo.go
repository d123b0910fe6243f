package auth

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ikhtibar/internal/model/auth"
)

// RoleRepo persists roles.
type RoleRepo struct {
	collection *mongo.Collection
}

// NewRoleRepo creates the role repository.
func NewRoleRepo(db *mongo.Database) *RoleRepo {
	return &RoleRepo{
		collection: db.Collection("roles"),
	}
}

// Create inserts a role.
func (r *RoleRepo) Create(ctx context.Context, role *auth.Role) error {
	now := time.Now()
	role.CreatedAt = now
	role.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, role)
	return err
}

// FindByID looks a role up by ID.
func (r *RoleRepo) FindByID(ctx context.Context, id string) (*auth.Role, error) {
	var role auth.Role
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&role)
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// FindByName looks a role up by its unique name.
func (r *RoleRepo) FindByName(ctx context.Context, name string) (*auth.Role, error) {
	var role auth.Role
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&role)
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// FindByNames returns all roles matching the given names.
func (r *RoleRepo) FindByNames(ctx context.Context, names []string) ([]*auth.Role, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"name": bson.M{"$in": names}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var roles []*auth.Role
	if err := cursor.All(ctx, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// List returns all roles sorted by name.
func (r *RoleRepo) List(ctx context.Context) ([]*auth.Role, error) {
	opts := options.Find().SetSort(bson.D{bson.E{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var roles []*auth.Role
	if err := cursor.All(ctx, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// Update applies an update document; updated_at is always refreshed.
func (r *RoleRepo) Update(ctx context.Context, id string, update bson.M) error {
	if setDoc, ok := update["$set"].(bson.M); ok {
		setDoc["updated_at"] = time.Now()
	} else {
		update["$set"] = bson.M{"updated_at": time.Now()}
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// Delete removes a role.
func (r *RoleRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

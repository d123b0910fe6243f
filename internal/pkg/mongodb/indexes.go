package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ikhtibar/internal/model/audit"
	"ikhtibar/internal/model/notification"
	"ikhtibar/internal/model/resource"
)

// EnsureIndexes creates the indexes for every collection. Called once at
// application startup.
func EnsureIndexes(db *mongo.Database) error {
	ctx := context.Background()

	// Models implementing the Model interface
	models := []Model{
		&audit.Entry{},
		&notification.Notification{},
		&resource.Resource{},
	}

	if err := EnsureAllIndexes(ctx, db, models...); err != nil {
		return err
	}

	// users collection
	userColl := db.Collection("users")
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "username", Value: 1}},
			Options: options.Index().SetName("idx_username").SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_email").SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "roles", Value: 1}, bson.E{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_roles_status"),
		},
		{
			Keys:    bson.D{bson.E{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
	}

	if err := CreateIndexes(ctx, userColl, userIndexes); err != nil {
		return err
	}

	// refresh_tokens collection. The token hash is unique so a presented
	// secret resolves at most one row; the TTL index garbage-collects
	// expired tokens.
	refreshTokenColl := db.Collection("refresh_tokens")
	refreshTokenIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "user_id", Value: 1}, bson.E{Key: "issued_at", Value: -1}},
			Options: options.Index().SetName("idx_user_issued"),
		},
		{
			Keys:    bson.D{bson.E{Key: "token_hash", Value: 1}},
			Options: options.Index().SetName("idx_token_hash").SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("idx_expires_at").SetExpireAfterSeconds(0),
		},
	}

	if err := CreateIndexes(ctx, refreshTokenColl, refreshTokenIndexes); err != nil {
		return err
	}

	// roles collection
	roleColl := db.Collection("roles")
	roleIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "name", Value: 1}},
			Options: options.Index().SetName("idx_name").SetUnique(true),
		},
	}

	if err := CreateIndexes(ctx, roleColl, roleIndexes); err != nil {
		return err
	}

	// permissions collection
	permColl := db.Collection("permissions")
	permIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "code", Value: 1}},
			Options: options.Index().SetName("idx_code").SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "category", Value: 1}},
			Options: options.Index().SetName("idx_category"),
		},
	}

	return CreateIndexes(ctx, permColl, permIndexes)
}

package auth

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ikhtibar/internal/model/auth"
)

// ErrAlreadyRevoked is returned by Revoke when another caller won the
// revocation of the same token.
var ErrAlreadyRevoked = errors.New("refresh token already revoked")

// RefreshTokenRepo persists hashed refresh tokens.
type RefreshTokenRepo struct {
	collection *mongo.Collection
}

// NewRefreshTokenRepo creates the refresh-token repository.
func NewRefreshTokenRepo(db *mongo.Database) *RefreshTokenRepo {
	return &RefreshTokenRepo{
		collection: db.Collection("refresh_tokens"),
	}
}

// Create inserts a token row.
func (r *RefreshTokenRepo) Create(ctx context.Context, token *auth.RefreshToken) error {
	token.CreatedAt = time.Now()
	if token.IssuedAt.IsZero() {
		token.IssuedAt = token.CreatedAt
	}

	_, err := r.collection.InsertOne(ctx, token)
	return err
}

// FindByHash looks a token up by the hash of its secret.
func (r *RefreshTokenRepo) FindByHash(ctx context.Context, tokenHash string) (*auth.RefreshToken, error) {
	var refreshToken auth.RefreshToken
	err := r.collection.FindOne(ctx, bson.M{"token_hash": tokenHash}).Decode(&refreshToken)
	if err != nil {
		return nil, err
	}
	return &refreshToken, nil
}

// Revoke marks the token revoked. The filter matches only a non-revoked
// row and MongoDB applies the update to a single document atomically, so
// when two requests race on the same secret exactly one of them modifies
// the row; the loser gets ErrAlreadyRevoked.
func (r *RefreshTokenRepo) Revoke(ctx context.Context, tokenHash string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"token_hash": tokenHash, "revoked": false},
		bson.M{"$set": bson.M{"revoked": true}},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return ErrAlreadyRevoked
	}
	return nil
}

// RevokeAllForUser revokes every live token of a user (logout everywhere,
// ban, password change).
func (r *RefreshTokenRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "revoked": false},
		bson.M{"$set": bson.M{"revoked": true}},
	)
	return err
}

// LatestForUser returns the most recently issued non-revoked token.
func (r *RefreshTokenRepo) LatestForUser(ctx context.Context, userID string) (*auth.RefreshToken, error) {
	opts := options.FindOne().SetSort(bson.D{bson.E{Key: "issued_at", Value: -1}})

	var refreshToken auth.RefreshToken
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "revoked": false}, opts).Decode(&refreshToken)
	if err != nil {
		return nil, err
	}
	return &refreshToken, nil
}

// DeleteByHash removes a token row.
func (r *RefreshTokenRepo) DeleteByHash(ctx context.Context, tokenHash string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"token_hash": tokenHash})
	return err
}

// DeleteExpired removes expired rows. The TTL index does this too; the
// method exists for tests and manual cleanup.
func (r *RefreshTokenRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": time.Now()}})
	return err
}

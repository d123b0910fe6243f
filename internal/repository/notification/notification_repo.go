package notification

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ikhtibar/internal/model/notification"
)

// NotificationRepo persists notifications.
type NotificationRepo struct {
	collection *mongo.Collection
}

// NewNotificationRepo creates the notification repository.
func NewNotificationRepo(db *mongo.Database) *NotificationRepo {
	var n notification.Notification
	return &NotificationRepo{
		collection: db.Collection(n.Collection()),
	}
}

// Create inserts one notification.
func (r *NotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, n)
	return err
}

// CreateMany inserts a batch (fan-out to many recipients).
func (r *NotificationRepo) CreateMany(ctx context.Context, notifications []*notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	now := time.Now()
	docs := make([]interface{}, len(notifications))
	for i, n := range notifications {
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		docs[i] = n
	}

	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// FindByID looks a notification up by ID.
func (r *NotificationRepo) FindByID(ctx context.Context, id string) (*notification.Notification, error) {
	var n notification.Notification
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ListForUser returns a user's notifications newest first.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID string, unreadOnly bool, page, pageSize int64) ([]*notification.Notification, int64, error) {
	filter := bson.M{"user_id": userID}
	if unreadOnly {
		filter["read"] = false
	}

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

	var notifications []*notification.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

// CountUnread returns the user's unread count.
func (r *NotificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
}

// MarkRead marks one notification read; the filter pins ownership.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}},
	)
	return err
}

// MarkAllRead marks every notification of the user read.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	return err
}

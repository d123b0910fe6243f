package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ikhtibar/internal/model/audit"
)

// AuditRepo persists audit entries.
type AuditRepo struct {
	collection *mongo.Collection
}

// NewAuditRepo creates the audit repository.
func NewAuditRepo(db *mongo.Database) *AuditRepo {
	var entry audit.Entry
	return &AuditRepo{
		collection: db.Collection(entry.Collection()),
	}
}

// Create inserts an entry.
func (r *AuditRepo) Create(ctx context.Context, entry *audit.Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

// ListFilter narrows a query. Zero values mean "any".
type ListFilter struct {
	UserID   string
	Severity audit.Severity
	Path     string
	From     time.Time
	To       time.Time
}

// List queries entries newest first with pagination.
func (r *AuditRepo) List(ctx context.Context, filter ListFilter, page, pageSize int64) ([]*audit.Entry, int64, error) {
	query := bson.M{}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}
	if filter.Severity != "" {
		query["severity"] = filter.Severity
	}
	if filter.Path != "" {
		query["path"] = filter.Path
	}
	createdAt := bson.M{}
	if !filter.From.IsZero() {
		createdAt["$gte"] = filter.From
	}
	if !filter.To.IsZero() {
		createdAt["$lt"] = filter.To
	}
	if len(createdAt) > 0 {
		query["created_at"] = createdAt
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "created_at", Value: -1}}).
		SetLimit(pageSize).
		SetSkip((page - 1) * pageSize)

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var entries []*audit.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

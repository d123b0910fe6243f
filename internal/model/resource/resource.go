package resource

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Resource is a stored media file (exam attachments, question images,
// audio clips). The module does not interpret the content; exam business
// rules live elsewhere and reference resources by ID.
type Resource struct {
	ID          string `bson:"_id,omitempty" json:"id"`
	UserID      string `bson:"user_id" json:"user_id"` // owner
	Ext         string `bson:"ext" json:"ext"`         // file extension without the dot
	Name        string `bson:"name" json:"name"`       // original filename
	DisplayName string `bson:"display_name,omitempty" json:"display_name,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`

	// Storage
	StorageKey  string `bson:"storage_key" json:"storage_key"`
	StorageURL  string `bson:"storage_url,omitempty" json:"storage_url,omitempty"`
	StorageType string `bson:"storage_type" json:"storage_type"` // local/oss

	// File
	FileSize    int64  `bson:"file_size" json:"file_size"`
	ContentType string `bson:"content_type" json:"content_type"`
	SHA256      string `bson:"sha256,omitempty" json:"sha256,omitempty"` // dedup key

	Tags []string `bson:"tags,omitempty" json:"tags,omitempty"`

	Status ResourceStatus `bson:"status" json:"status"`

	UploadedAt time.Time  `bson:"uploaded_at" json:"uploaded_at"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `bson:"updated_at" json:"updated_at"`
	DeletedAt  *time.Time `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"` // soft delete
}

// ResourceStatus is the media lifecycle state.
type ResourceStatus string

const (
	ResourceStatusUploading ResourceStatus = "uploading"
	ResourceStatusReady     ResourceStatus = "ready"
	ResourceStatusFailed    ResourceStatus = "failed"
	ResourceStatusDeleted   ResourceStatus = "deleted"
)

// Collection returns the collection name.
func (r *Resource) Collection() string {
	return "resources"
}

// EnsureIndexes creates and maintains the resource indexes.
func (r *Resource) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(r.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "user_id", Value: 1}, bson.E{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_user_status"),
		},
		{
			Keys:    bson.D{bson.E{Key: "user_id", Value: 1}, bson.E{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_user_created"),
		},
		{
			Keys:    bson.D{bson.E{Key: "sha256", Value: 1}},
			Options: options.Index().SetName("idx_sha256"),
		},
		{
			Keys:    bson.D{bson.E{Key: "storage_key", Value: 1}},
			Options: options.Index().SetName("idx_storage_key"),
		},
	}

	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Severity classifies an audit entry.
type Severity string

const (
	// SeveritySecurity marks authentication, account, role, permission
	// and settings mutations.
	SeveritySecurity Severity = "security"
	// SeveritySystem marks everything else.
	SeveritySystem Severity = "system"
)

// RedactionMarker replaces bodies and header values that must never be
// logged verbatim.
const RedactionMarker = "[REDACTED]"

// Entry is one audited HTTP request.
type Entry struct {
	ID           string            `bson:"_id,omitempty" json:"id"`
	UserID       string            `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Username     string            `bson:"username,omitempty" json:"username,omitempty"`
	Method       string            `bson:"method" json:"method"`
	Path         string            `bson:"path" json:"path"`
	Query        string            `bson:"query,omitempty" json:"query,omitempty"`
	Headers      map[string]string `bson:"headers,omitempty" json:"headers,omitempty"` // sensitive values redacted
	ClientIP     string            `bson:"client_ip" json:"client_ip"`
	UserAgent    string            `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	RequestBody  string            `bson:"request_body,omitempty" json:"request_body,omitempty"`
	ResponseBody string            `bson:"response_body,omitempty" json:"response_body,omitempty"`
	StatusCode   int               `bson:"status_code" json:"status_code"`
	Duration     time.Duration     `bson:"duration" json:"duration"`
	Severity     Severity          `bson:"severity" json:"severity"`
	Success      bool              `bson:"success" json:"success"`
	CreatedAt    time.Time         `bson:"created_at" json:"created_at"`
}

// Collection returns the collection name.
func (e *Entry) Collection() string {
	return "audit_entries"
}

// EnsureIndexes creates and maintains the audit indexes.
func (e *Entry) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(e.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "user_id", Value: 1}, bson.E{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_user_created"),
		},
		{
			Keys:    bson.D{bson.E{Key: "severity", Value: 1}, bson.E{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_severity_created"),
		},
		{
			Keys:    bson.D{bson.E{Key: "path", Value: 1}},
			Options: options.Index().SetName("idx_path"),
		},
		{
			Keys:    bson.D{bson.E{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
	}

	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

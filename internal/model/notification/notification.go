package notification

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Type is the notification kind.
type Type string

const (
	TypeExamScheduled   Type = "exam_scheduled"
	TypeExamReminder    Type = "exam_reminder"
	TypeExamStarted     Type = "exam_started"
	TypeExamCompleted   Type = "exam_completed"
	TypeResultPublished Type = "result_published"
)

// IsValid reports whether the type is a known value.
func (t Type) IsValid() bool {
	switch t {
	case TypeExamScheduled, TypeExamReminder, TypeExamStarted,
		TypeExamCompleted, TypeResultPublished:
		return true
	}
	return false
}

// Notification is one delivered exam lifecycle message. The exam fields
// are explicit and typed per event kind instead of a generic string map.
type Notification struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Type      Type      `bson:"type" json:"type"`
	Title     string    `bson:"title" json:"title"`
	Message   string    `bson:"message" json:"message"`
	ExamID    string    `bson:"exam_id" json:"exam_id"`
	ExamTitle string    `bson:"exam_title" json:"exam_title"`
	// StartsAt is set for scheduled/reminder/started events.
	StartsAt *time.Time `bson:"starts_at,omitempty" json:"starts_at,omitempty"`
	// Score is set for result_published events.
	Score     *float64  `bson:"score,omitempty" json:"score,omitempty"`
	Read      bool      `bson:"read" json:"read"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Typed event payloads. One struct per exam lifecycle event kind so the
// fields are compile-time checked.

// ExamScheduled announces a newly scheduled exam.
type ExamScheduled struct {
	ExamID    string
	ExamTitle string
	StartsAt  time.Time
}

// ExamReminder reminds recipients shortly before the start.
type ExamReminder struct {
	ExamID    string
	ExamTitle string
	StartsAt  time.Time
}

// ExamStarted announces that an exam session opened.
type ExamStarted struct {
	ExamID    string
	ExamTitle string
	StartedAt time.Time
}

// ExamCompleted announces that an exam session closed.
type ExamCompleted struct {
	ExamID      string
	ExamTitle   string
	CompletedAt time.Time
}

// ResultPublished announces a published score to one student.
type ResultPublished struct {
	ExamID    string
	ExamTitle string
	Score     float64
}

// Collection returns the collection name.
func (n *Notification) Collection() string {
	return "notifications"
}

// EnsureIndexes creates and maintains the notification indexes.
func (n *Notification) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(n.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "user_id", Value: 1}, bson.E{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_user_created"),
		},
		{
			Keys:    bson.D{bson.E{Key: "user_id", Value: 1}, bson.E{Key: "read", Value: 1}},
			Options: options.Index().SetName("idx_user_read"),
		},
		{
			Keys:    bson.D{bson.E{Key: "exam_id", Value: 1}},
			Options: options.Index().SetName("idx_exam"),
		},
	}

	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

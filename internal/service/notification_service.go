package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"ikhtibar/internal/model/notification"
	"ikhtibar/internal/pkg/apperrors"
	"ikhtibar/internal/pkg/cache"
	"ikhtibar/internal/pkg/id"
	notificationRepo "ikhtibar/internal/repository/notification"
)

var ErrNotificationNotFound = fmt.Errorf("%w: notification", apperrors.ErrNotFound)

// NotificationService fans exam lifecycle events out to recipients and
// serves each user's notification feed. Every delivered notification is
// persisted and additionally published on a redis channel for live
// consumers.
type NotificationService struct {
	repo  *notificationRepo.NotificationRepo
	cache *cache.RedisCache
}

// NewNotificationService creates the notification service.
func NewNotificationService(repo *notificationRepo.NotificationRepo, redisCache *cache.RedisCache) *NotificationService {
	return &NotificationService{
		repo:  repo,
		cache: redisCache,
	}
}

// NotifyExamScheduled delivers an exam_scheduled event to the recipients.
func (s *NotificationService) NotifyExamScheduled(ctx context.Context, event notification.ExamScheduled, recipients []string) error {
	startsAt := event.StartsAt
	return s.deliver(ctx, recipients, func(userID string) *notification.Notification {
		return &notification.Notification{
			UserID:    userID,
			Type:      notification.TypeExamScheduled,
			Title:     "Exam scheduled",
			Message:   fmt.Sprintf("%s is scheduled for %s", event.ExamTitle, event.StartsAt.Format(time.RFC1123)),
			ExamID:    event.ExamID,
			ExamTitle: event.ExamTitle,
			StartsAt:  &startsAt,
		}
	})
}

// NotifyExamReminder delivers an exam_reminder event to the recipients.
func (s *NotificationService) NotifyExamReminder(ctx context.Context, event notification.ExamReminder, recipients []string) error {
	startsAt := event.StartsAt
	return s.deliver(ctx, recipients, func(userID string) *notification.Notification {
		return &notification.Notification{
			UserID:    userID,
			Type:      notification.TypeExamReminder,
			Title:     "Exam reminder",
			Message:   fmt.Sprintf("%s starts at %s", event.ExamTitle, event.StartsAt.Format(time.RFC1123)),
			ExamID:    event.ExamID,
			ExamTitle: event.ExamTitle,
			StartsAt:  &startsAt,
		}
	})
}

// NotifyExamStarted delivers an exam_started event to the recipients.
func (s *NotificationService) NotifyExamStarted(ctx context.Context, event notification.ExamStarted, recipients []string) error {
	startedAt := event.StartedAt
	return s.deliver(ctx, recipients, func(userID string) *notification.Notification {
		return &notification.Notification{
			UserID:    userID,
			Type:      notification.TypeExamStarted,
			Title:     "Exam started",
			Message:   fmt.Sprintf("%s has started", event.ExamTitle),
			ExamID:    event.ExamID,
			ExamTitle: event.ExamTitle,
			StartsAt:  &startedAt,
		}
	})
}

// NotifyExamCompleted delivers an exam_completed event to the recipients.
func (s *NotificationService) NotifyExamCompleted(ctx context.Context, event notification.ExamCompleted, recipients []string) error {
	return s.deliver(ctx, recipients, func(userID string) *notification.Notification {
		return &notification.Notification{
			UserID:    userID,
			Type:      notification.TypeExamCompleted,
			Title:     "Exam completed",
			Message:   fmt.Sprintf("%s has ended", event.ExamTitle),
			ExamID:    event.ExamID,
			ExamTitle: event.ExamTitle,
		}
	})
}

// NotifyResultPublished delivers a result_published event to one student.
func (s *NotificationService) NotifyResultPublished(ctx context.Context, event notification.ResultPublished, studentID string) error {
	score := event.Score
	return s.deliver(ctx, []string{studentID}, func(userID string) *notification.Notification {
		return &notification.Notification{
			UserID:    userID,
			Type:      notification.TypeResultPublished,
			Title:     "Result published",
			Message:   fmt.Sprintf("Your result for %s is available", event.ExamTitle),
			ExamID:    event.ExamID,
			ExamTitle: event.ExamTitle,
			Score:     &score,
		}
	})
}

// deliver persists one notification per recipient and publishes each on
// the live channel. Publish failures do not fail the delivery; the feed
// is the source of truth and the channel is best-effort.
func (s *NotificationService) deliver(ctx context.Context, recipients []string, build func(userID string) *notification.Notification) error {
	if len(recipients) == 0 {
		return fmt.Errorf("%w: no recipients", apperrors.ErrInvalidArgument)
	}

	notifications := make([]*notification.Notification, 0, len(recipients))
	for _, userID := range recipients {
		n := build(userID)
		n.ID = id.New()
		notifications = append(notifications, n)
	}

	if err := s.repo.CreateMany(ctx, notifications); err != nil {
		log.Error().Err(err).Int("recipients", len(recipients)).Msg("failed to persist notifications")
		return fmt.Errorf("persist notifications: %w", err)
	}

	for _, n := range notifications {
		if err := s.cache.Publish(ctx, cache.NotificationChannel, n); err != nil {
			log.Warn().Err(err).Str("notification_id", n.ID).Msg("failed to publish notification")
		}
	}

	return nil
}

// FeedResult is a page of a user's notification feed.
type FeedResult struct {
	Notifications []*notification.Notification `json:"notifications"`
	Total         int64                        `json:"total"`
	Unread        int64                        `json:"unread"`
	Page          int64                        `json:"page"`
	PageSize      int64                        `json:"page_size"`
}

// Feed returns the user's notifications newest first.
func (s *NotificationService) Feed(ctx context.Context, userID string, unreadOnly bool, page, pageSize int64) (*FeedResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	notifications, total, err := s.repo.ListForUser(ctx, userID, unreadOnly, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}

	return &FeedResult{
		Notifications: notifications,
		Total:         total,
		Unread:        unread,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

// MarkRead marks one of the user's notifications read.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	n, err := s.repo.FindByID(ctx, notificationID)
	if err != nil || n.UserID != userID {
		return ErrNotificationNotFound
	}
	return s.repo.MarkRead(ctx, notificationID, userID)
}

// MarkAllRead marks the user's whole feed read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}

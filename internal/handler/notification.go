package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ikhtibar/internal/model/notification"
	"ikhtibar/internal/pkg/apperrors"
	"ikhtibar/internal/pkg/ctxutil"
	"ikhtibar/internal/pkg/httpx"
	"ikhtibar/internal/service"
)

// NotificationHandler serves the notification feed and the publish endpoint.
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler creates the notification handler.
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// Feed returns the caller's notifications
// @Summary      Notification feed
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        unread_only query    bool  false  "only unread"
// @Param        page        query    int   false  "page"
// @Param        page_size   query    int   false  "page size"
// @Success      200         {object} httpx.SuccessResponse{data=service.FeedResult}
// @Router       /api/v1/notifications [get]
func (h *NotificationHandler) Feed(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.Error(apperrors.ErrUnauthorized)
		return
	}

	unreadOnly := c.Query("unread_only") == "true"
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	pageSize, _ := strconv.ParseInt(c.DefaultQuery("page_size", "20"), 10, 64)

	result, err := h.notificationService.Feed(c.Request.Context(), userID, unreadOnly, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("", result))
}

// MarkRead marks one notification read
// @Summary      Mark notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "notification ID"
// @Success      200  {object}  httpx.SuccessResponse
// @Failure      404  {object}  httpx.ProblemDetails
// @Router       /api/v1/notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.Error(apperrors.ErrUnauthorized)
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("marked read", nil))
}

// MarkAllRead marks the caller's notifications read
// @Summary      Mark all notifications read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  httpx.SuccessResponse
// @Router       /api/v1/notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.Error(apperrors.ErrUnauthorized)
		return
	}

	if err := h.notificationService.MarkAllRead(c.Request.Context(), userID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("all marked read", nil))
}

// PublishEventRequest carries one exam lifecycle event to fan out. The
// event type decides which fields are required.
type PublishEventRequest struct {
	Type       string    `json:"type" binding:"required"`
	ExamID     string    `json:"exam_id" binding:"required"`
	ExamTitle  string    `json:"exam_title" binding:"required"`
	StartsAt   time.Time `json:"starts_at"`
	Score      float64   `json:"score"`
	Recipients []string  `json:"recipients"`
}

// Publish fans an exam lifecycle event out to recipients
// @Summary      Publish exam event
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      PublishEventRequest  true  "event"
// @Success      200      {object}  httpx.SuccessResponse
// @Failure      400      {object}  httpx.ProblemDetails
// @Router       /api/v1/notifications/publish [post]
func (h *NotificationHandler) Publish(c *gin.Context) {
	var req PublishEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(fmt.Errorf("%w: %s", apperrors.ErrInvalidArgument, err.Error()))
		return
	}
	if len(req.Recipients) == 0 {
		c.Error(fmt.Errorf("%w: recipients must not be empty", apperrors.ErrInvalidArgument))
		return
	}

	ctx := c.Request.Context()
	var err error
	switch notification.Type(req.Type) {
	case notification.TypeExamScheduled:
		err = h.notificationService.NotifyExamScheduled(ctx, notification.ExamScheduled{
			ExamID:    req.ExamID,
			ExamTitle: req.ExamTitle,
			StartsAt:  req.StartsAt,
		}, req.Recipients)
	case notification.TypeExamReminder:
		err = h.notificationService.NotifyExamReminder(ctx, notification.ExamReminder{
			ExamID:    req.ExamID,
			ExamTitle: req.ExamTitle,
			StartsAt:  req.StartsAt,
		}, req.Recipients)
	case notification.TypeExamStarted:
		err = h.notificationService.NotifyExamStarted(ctx, notification.ExamStarted{
			ExamID:    req.ExamID,
			ExamTitle: req.ExamTitle,
			StartedAt: time.Now(),
		}, req.Recipients)
	case notification.TypeExamCompleted:
		err = h.notificationService.NotifyExamCompleted(ctx, notification.ExamCompleted{
			ExamID:      req.ExamID,
			ExamTitle:   req.ExamTitle,
			CompletedAt: time.Now(),
		}, req.Recipients)
	case notification.TypeResultPublished:
		for _, studentID := range req.Recipients {
			if err = h.notificationService.NotifyResultPublished(ctx, notification.ResultPublished{
				ExamID:    req.ExamID,
				ExamTitle: req.ExamTitle,
				Score:     req.Score,
			}, studentID); err != nil {
				break
			}
		}
	default:
		c.Error(fmt.Errorf("%w: unknown event type %q", apperrors.ErrInvalidArgument, req.Type))
		return
	}
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("event published", nil))
}

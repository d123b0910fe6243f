package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ikhtibar/internal/model/audit"
	"ikhtibar/internal/pkg/apperrors"
	"ikhtibar/internal/pkg/httpx"
	auditRepo "ikhtibar/internal/repository/audit"
	"ikhtibar/internal/service"
)

// AuditHandler serves the audit trail query endpoint.
type AuditHandler struct {
	auditService *service.AuditService
}

// NewAuditHandler creates the audit handler.
func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List queries audit entries
// @Summary      List audit entries
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        user_id   query     string  false  "filter by actor"
// @Param        severity  query     string  false  "filter by severity"
// @Param        path      query     string  false  "filter by request path"
// @Param        from      query     string  false  "RFC 3339 lower bound"
// @Param        to        query     string  false  "RFC 3339 upper bound"
// @Param        page      query     int     false  "page"
// @Param        page_size query     int     false  "page size"
// @Success      200       {object}  httpx.SuccessResponse{data=service.ListEntriesResult}
// @Failure      400       {object}  httpx.ProblemDetails
// @Router       /api/v1/audit [get]
func (h *AuditHandler) List(c *gin.Context) {
	filter := auditRepo.ListFilter{
		UserID:   c.Query("user_id"),
		Severity: audit.Severity(c.Query("severity")),
		Path:     c.Query("path"),
	}

	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.Error(fmt.Errorf("%w: invalid from timestamp", apperrors.ErrInvalidArgument))
			return
		}
		filter.From = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.Error(fmt.Errorf("%w: invalid to timestamp", apperrors.ErrInvalidArgument))
			return
		}
		filter.To = t
	}

	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	pageSize, _ := strconv.ParseInt(c.DefaultQuery("page_size", "50"), 10, 64)

	result, err := h.auditService.ListEntries(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("", result))
}

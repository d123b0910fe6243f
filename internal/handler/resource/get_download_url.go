package resource

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ikhtibar/internal/pkg/apperrors"
	"ikhtibar/internal/pkg/httpx"
	"ikhtibar/internal/service"
)

// GetDownloadURL returns a presigned download link
// @Summary      Get download URL
// @Tags         resources
// @Produce      json
// @Security     BearerAuth
// @Param        resource_id  path   string  true   "resource ID"
// @Param        expires_in   query  int     false  "link lifetime in seconds (default 3600)"
// @Success      200  {object}  httpx.SuccessResponse{data=service.GetDownloadURLResult}
// @Failure      404  {object}  httpx.ProblemDetails
// @Router       /api/v1/resources/{resource_id}/url [get]
func (h *Handler) GetDownloadURL(c *gin.Context) {
	userID, isManager, ok := identity(c)
	if !ok {
		c.Error(apperrors.ErrUnauthorized)
		return
	}
	if isManager {
		userID = ""
	}

	var expiresIn time.Duration
	if raw := c.Query("expires_in"); raw != "" {
		seconds, err := time.ParseDuration(raw + "s")
		if err != nil || seconds <= 0 {
			c.Error(fmt.Errorf("%w: invalid expires_in", apperrors.ErrInvalidArgument))
			return
		}
		expiresIn = seconds
	}

	result, err := h.resourceService.GetDownloadURL(c.Request.Context(), &service.GetDownloadURLRequest{
		UserID:     userID,
		ResourceID: c.Param("resource_id"),
		ExpiresIn:  expiresIn,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("", result))
}

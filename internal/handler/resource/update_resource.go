package resource

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"ikhtibar/internal/pkg/apperrors"
	"ikhtibar/internal/pkg/httpx"
)

// UpdateResourceRequest changes resource display metadata.
type UpdateResourceRequest struct {
	DisplayName string   `json:"display_name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// UpdateResource updates resource metadata
// @Summary      Update resource metadata
// @Tags         resources
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        resource_id  path  string                 true  "resource ID"
// @Param        request      body  UpdateResourceRequest  true  "metadata"
// @Success      200  {object}  httpx.SuccessResponse
// @Failure      404  {object}  httpx.ProblemDetails
// @Router       /api/v1/resources/{resource_id} [put]
func (h *Handler) UpdateResource(c *gin.Context) {
	userID, isManager, ok := identity(c)
	if !ok {
		c.Error(apperrors.ErrUnauthorized)
		return
	}
	if isManager {
		userID = ""
	}

	var req UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(fmt.Errorf("%w: %s", apperrors.ErrInvalidArgument, err.Error()))
		return
	}

	err := h.resourceService.UpdateResourceMeta(c.Request.Context(), userID, c.Param("resource_id"),
		req.DisplayName, req.Description, req.Tags)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("resource updated", nil))
}

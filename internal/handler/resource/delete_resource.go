package resource

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ikhtibar/internal/pkg/apperrors"
	"ikhtibar/internal/pkg/httpx"
)

// DeleteResource soft-deletes a resource
// @Summary      Delete resource
// @Description  Retires the resource record. The caller must own the resource or be an admin.
// @Tags         resources
// @Produce      json
// @Security     BearerAuth
// @Param        resource_id  path  string  true  "resource ID"
// @Success      200  {object}  httpx.SuccessResponse
// @Failure      403  {object}  httpx.ProblemDetails
// @Failure      404  {object}  httpx.ProblemDetails
// @Router       /api/v1/resources/{resource_id} [delete]
func (h *Handler) DeleteResource(c *gin.Context) {
	userID, isManager, ok := identity(c)
	if !ok {
		c.Error(apperrors.ErrUnauthorized)
		return
	}

	if err := h.resourceService.DeleteResource(c.Request.Context(), userID, c.Param("resource_id"), isManager); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("resource deleted", nil))
}

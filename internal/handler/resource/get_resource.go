package resource

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ikhtibar/internal/pkg/apperrors"
	"ikhtibar/internal/pkg/httpx"
)

// GetResource returns resource metadata
// @Summary      Get resource
// @Tags         resources
// @Produce      json
// @Security     BearerAuth
// @Param        resource_id  path  string  true  "resource ID"
// @Success      200  {object}  httpx.SuccessResponse
// @Failure      404  {object}  httpx.ProblemDetails
// @Router       /api/v1/resources/{resource_id} [get]
func (h *Handler) GetResource(c *gin.Context) {
	userID, isManager, ok := identity(c)
	if !ok {
		c.Error(apperrors.ErrUnauthorized)
		return
	}
	if isManager {
		userID = ""
	}

	res, err := h.resourceService.GetResource(c.Request.Context(), userID, c.Param("resource_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("", res))
}

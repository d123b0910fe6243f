package resource

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ikhtibar/internal/pkg/apperrors"
	"ikhtibar/internal/pkg/httpx"
	"ikhtibar/internal/service"
)

// ListResources pages through resources
// @Summary      List resources
// @Description  Lists the caller's resources. Admins see every user's resources.
// @Tags         resources
// @Produce      json
// @Security     BearerAuth
// @Param        page       query  int  false  "page"
// @Param        page_size  query  int  false  "page size"
// @Success      200  {object}  httpx.SuccessResponse{data=service.ListResourcesResult}
// @Router       /api/v1/resources [get]
func (h *Handler) ListResources(c *gin.Context) {
	userID, isManager, ok := identity(c)
	if !ok {
		c.Error(apperrors.ErrUnauthorized)
		return
	}
	if isManager {
		userID = ""
	}

	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	pageSize, _ := strconv.ParseInt(c.DefaultQuery("page_size", "20"), 10, 64)

	result, err := h.resourceService.ListResources(c.Request.Context(), &service.ListResourcesRequest{
		UserID:   userID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("", result))
}

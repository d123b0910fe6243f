package resource

import (
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"ikhtibar/internal/pkg/apperrors"
	"ikhtibar/internal/service"
)

// DownloadFile streams a stored file
// @Summary      Download file
// @Tags         resources
// @Produce      application/octet-stream
// @Security     BearerAuth
// @Param        resource_id  path  string  true  "resource ID"
// @Success      200  {file}    binary
// @Failure      403  {object}  httpx.ProblemDetails
// @Failure      404  {object}  httpx.ProblemDetails
// @Router       /api/v1/resources/{resource_id}/download [get]
func (h *Handler) DownloadFile(c *gin.Context) {
	userID, isManager, ok := identity(c)
	if !ok {
		c.Error(apperrors.ErrUnauthorized)
		return
	}
	if isManager {
		// internal-style access, skips the ownership check
		userID = ""
	}

	result, err := h.resourceService.DownloadFile(c.Request.Context(), &service.DownloadFileRequest{
		UserID:     userID,
		ResourceID: c.Param("resource_id"),
	})
	if err != nil {
		c.Error(err)
		return
	}
	defer result.Data.Close()

	c.Header("Content-Type", result.ContentType)
	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Header("Content-Length", strconv.FormatInt(result.FileSize, 10))
	c.Status(200)

	if _, err := io.Copy(c.Writer, result.Data); err != nil {
		// headers already sent, nothing to do but log
		log.Error().Err(err).Str("resource_id", result.ResourceID).Msg("failed to stream file")
	}
}

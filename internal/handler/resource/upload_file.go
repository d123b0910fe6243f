package resource

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"ikhtibar/internal/pkg/apperrors"
	"ikhtibar/internal/pkg/httpx"
	"ikhtibar/internal/service"
)

// UploadFileResponseData is the created resource summary.
type UploadFileResponseData struct {
	ResourceID   string `json:"resource_id"`
	ResourceURL  string `json:"resource_url"`
	FileSize     int64  `json:"file_size"`
	FileName     string `json:"file_name"`
	SHA256       string `json:"sha256"`
	Deduplicated bool   `json:"deduplicated"`
}

// UploadFile uploads a media file
// @Summary      Upload file
// @Description  Uploads a file via multipart/form-data and creates the resource record. Re-uploads of identical content return the existing resource.
// @Tags         resources
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "file to upload"
// @Success      201   {object}  httpx.SuccessResponse{data=UploadFileResponseData}
// @Failure      400   {object}  httpx.ProblemDetails
// @Router       /api/v1/resources/upload [post]
func (h *Handler) UploadFile(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		c.Error(apperrors.ErrUnauthorized)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.Error(fmt.Errorf("%w: missing file field", apperrors.ErrInvalidArgument))
		return
	}

	reader, err := file.Open()
	if err != nil {
		c.Error(fmt.Errorf("%w: %s", apperrors.ErrInvalidArgument, err.Error()))
		return
	}
	defer reader.Close()

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Filename)), ".")
	if ext == "" {
		ext = "bin"
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	result, err := h.resourceService.UploadFile(c.Request.Context(), &service.UploadFileRequest{
		UserID:      userID,
		FileName:    file.Filename,
		ContentType: contentType,
		Ext:         ext,
		Data:        reader,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, httpx.NewSuccessResponse("file uploaded", UploadFileResponseData{
		ResourceID:   result.ResourceID,
		ResourceURL:  result.ResourceURL,
		FileSize:     result.FileSize,
		FileName:     file.Filename,
		SHA256:       result.SHA256,
		Deduplicated: result.Deduplicated,
	}))
}

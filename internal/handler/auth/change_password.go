package auth

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"ikhtibar/internal/pkg/apperrors"
	"ikhtibar/internal/pkg/ctxutil"
	"ikhtibar/internal/pkg/httpx"
	"ikhtibar/internal/server/middleware"
)

// ChangePasswordRequest is the password change payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// ChangePassword replaces the caller's password
// @Summary      Change password
// @Description  Verifies the current password, replaces it and revokes all sessions
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      ChangePasswordRequest  true  "passwords"
// @Success      200      {object}  httpx.SuccessResponse
// @Failure      401      {object}  httpx.ProblemDetails
// @Router       /api/v1/auth/password [put]
func (h *Handler) ChangePassword(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.Error(apperrors.ErrUnauthorized)
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(fmt.Errorf("%w: %s", apperrors.ErrInvalidArgument, err.Error()))
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		c.Error(err)
		return
	}

	if h.authCfg.UseHTTPOnlyCookies {
		middleware.ClearRefreshCookie(c, h.authCfg)
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("password changed, please log in again", nil))
}

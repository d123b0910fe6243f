package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ikhtibar/internal/pkg/apperrors"
	"ikhtibar/internal/pkg/ctxutil"
	"ikhtibar/internal/pkg/httpx"
)

// GetMe returns the caller
// @Summary      Current user
// @Description  Returns the account behind the presented access token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  httpx.SuccessResponse{data=UserInfo}
// @Failure      401  {object}  httpx.ProblemDetails
// @Router       /api/v1/auth/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.Error(apperrors.ErrUnauthorized)
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("", toUserInfo(user)))
}

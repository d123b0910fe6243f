package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ikhtibar/internal/pkg/apperrors"
	"ikhtibar/internal/pkg/ctxutil"
	"ikhtibar/internal/pkg/httpx"
	"ikhtibar/internal/server/middleware"
)

// LogoutRequest is the logout payload. The body may be empty in cookie
// mode.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout revokes the session
// @Summary      Log out
// @Description  Revokes the presented refresh token; idempotent
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LogoutRequest  false  "refresh token (cookie mode may omit)"
// @Success      200      {object}  httpx.SuccessResponse
// @Router       /api/v1/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.RefreshToken = ""
	}

	secret := req.RefreshToken
	if secret == "" && h.authCfg.UseHTTPOnlyCookies {
		if cookie, err := c.Cookie(h.authCfg.RefreshCookieName); err == nil {
			secret = cookie
		}
	}

	if secret != "" {
		if err := h.authService.Logout(c.Request.Context(), secret); err != nil {
			c.Error(err)
			return
		}
	}

	if h.authCfg.UseHTTPOnlyCookies {
		middleware.ClearRefreshCookie(c, h.authCfg)
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("logged out", nil))
}

// LogoutAll revokes every session of the caller
// @Summary      Log out everywhere
// @Description  Revokes all of the caller's refresh tokens
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  httpx.SuccessResponse
// @Router       /api/v1/auth/logout-all [post]
func (h *Handler) LogoutAll(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.Error(apperrors.ErrUnauthorized)
		return
	}

	if err := h.authService.LogoutAll(c.Request.Context(), userID); err != nil {
		c.Error(err)
		return
	}

	if h.authCfg.UseHTTPOnlyCookies {
		middleware.ClearRefreshCookie(c, h.authCfg)
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("all sessions revoked", nil))
}

package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ikhtibar/internal/pkg/httpx"
	"ikhtibar/internal/server/middleware"
	"ikhtibar/internal/service"
)

// RefreshRequest is the explicit refresh payload. The body may be empty
// in cookie mode.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponseData is the rotated token pair.
type RefreshResponseData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"` // omitted in cookie mode
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    string `json:"expires_at"`
	TokenType    string `json:"token_type"`
}

// Refresh rotates a token pair
// @Summary      Refresh tokens
// @Description  Exchanges a refresh token for a new pair; the presented token is revoked
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RefreshRequest  false  "refresh token (cookie mode may omit)"
// @Success      200      {object}  httpx.SuccessResponse{data=RefreshResponseData}
// @Failure      401      {object}  httpx.ProblemDetails
// @Router       /api/v1/auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	secret := h.refreshSecret(c)
	if secret == "" {
		c.Error(service.ErrInvalidRefreshToken)
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), secret)
	if err != nil {
		c.Error(err)
		return
	}

	data := RefreshResponseData{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		ExpiresAt:    pair.ExpiresAt.Format(time.RFC3339),
		TokenType:    pair.TokenType,
	}

	if h.authCfg.UseHTTPOnlyCookies {
		middleware.SetRefreshCookie(c, h.authCfg, pair.RefreshToken)
		data.RefreshToken = ""
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("token refreshed", data))
}

// refreshSecret resolves the refresh secret from the request: JSON body
// first, then the cookie in cookie mode.
func (h *Handler) refreshSecret(c *gin.Context) string {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}

	if h.authCfg.UseHTTPOnlyCookies {
		if cookie, err := c.Cookie(h.authCfg.RefreshCookieName); err == nil {
			return cookie
		}
	}

	return ""
}

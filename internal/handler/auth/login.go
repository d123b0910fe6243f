package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ikhtibar/internal/pkg/apperrors"
	"ikhtibar/internal/pkg/httpx"
	"ikhtibar/internal/server/middleware"
)

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponseData is the issued token pair plus the caller.
type LoginResponseData struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token,omitempty"` // omitted in cookie mode
	ExpiresIn    int      `json:"expires_in"`
	ExpiresAt    string   `json:"expires_at"`
	TokenType    string   `json:"token_type"`
	User         UserInfo `json:"user"`
}

// Login authenticates a user
// @Summary      Log in
// @Description  Verifies credentials and issues an access token plus a refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "credentials"
// @Success      200      {object}  httpx.SuccessResponse{data=LoginResponseData}
// @Failure      400      {object}  httpx.ProblemDetails
// @Failure      401      {object}  httpx.ProblemDetails
// @Failure      429      {object}  middleware.RateLimitResponse
// @Router       /api/v1/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(fmt.Errorf("%w: %s", apperrors.ErrInvalidArgument, err.Error()))
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	data := LoginResponseData{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
		ExpiresAt:    result.ExpiresAt.Format(time.RFC3339),
		TokenType:    result.TokenType,
		User:         toUserInfo(result.User),
	}

	// Cookie mode keeps the refresh secret out of the response body.
	if h.authCfg.UseHTTPOnlyCookies {
		middleware.SetRefreshCookie(c, h.authCfg, result.RefreshToken)
		data.RefreshToken = ""
	}

	c.JSON(http.StatusOK, httpx.NewSuccessResponse("login successful", data))
}

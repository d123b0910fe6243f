package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"ikhtibar/internal/config"
	"ikhtibar/internal/service"
)

// TokenRefresher exchanges a refresh secret for a fresh token pair.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshSecret string) (*service.TokenPair, error)
}

// RefreshResponse is the 401 body answered when the refresh flow fails
// and the client must re-authenticate.
type RefreshResponse struct {
	Error           string `json:"error"`
	Message         string `json:"message"`
	RequiresRefresh bool   `json:"requiresRefresh"`
}

// TokenRefresh performs transparent token rotation. A request without
// the Token-Expired signal passes through untouched. With the signal,
// the refresh secret is resolved from the cookie (cookie mode), the
// X-Refresh-Token header, or the Authorization header as a last resort;
// a successful rotation answers the fresh pair in response headers,
// swaps the request's Authorization to the new access token and lets the
// request continue, so the client never sees the expiry.
func TokenRefresh(refresher TokenRefresher, cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(HeaderTokenExpired) != "true" {
			c.Next()
			return
		}

		secret := refreshSecretFrom(c, cfg)
		if secret == "" {
			refreshFailure(c, "refresh token missing")
			return
		}

		pair, err := refresher.Refresh(c.Request.Context(), secret)
		if err != nil {
			log.Warn().Err(err).
				Str("client_ip", c.ClientIP()).
				Msg("token refresh rejected")
			refreshFailure(c, "refresh token invalid or expired")
			return
		}

		c.Header(HeaderNewAccessToken, pair.AccessToken)
		c.Header(HeaderNewRefreshToken, pair.RefreshToken)
		c.Header(HeaderTokenExpiresAt, pair.ExpiresAt.Format(time.RFC3339))

		if cfg.UseHTTPOnlyCookies {
			SetRefreshCookie(c, cfg, pair.RefreshToken)
		}

		c.Request.Header.Set("Authorization", "Bearer "+pair.AccessToken)

		c.Next()
	}
}

// refreshSecretFrom resolves the refresh secret. Cookie mode prefers the
// HttpOnly cookie; the header remains a fallback for non-browser
// clients.
func refreshSecretFrom(c *gin.Context, cfg *config.AuthConfig) string {
	if cfg.UseHTTPOnlyCookies {
		if cookie, err := c.Cookie(cfg.RefreshCookieName); err == nil && cookie != "" {
			return cookie
		}
	}

	if secret := c.GetHeader(HeaderRefreshToken); secret != "" {
		return secret
	}

	return bearerToken(c)
}

// refreshFailure answers 401 and tells the client a full login is
// needed.
func refreshFailure(c *gin.Context, msg string) {
	c.Header(HeaderTokenRefreshNeeded, "true")
	c.Header(HeaderTokenRefreshError, msg)
	c.AbortWithStatusJSON(http.StatusUnauthorized, RefreshResponse{
		Error:           "unauthorized",
		Message:         msg,
		RequiresRefresh: true,
	})
}

// SetRefreshCookie stores the refresh secret client-side. HttpOnly keeps
// scripts out; SameSite=Strict keeps cross-site requests out; Secure is
// tied to whether the connection itself was TLS.
func SetRefreshCookie(c *gin.Context, cfg *config.AuthConfig, secret string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cfg.RefreshCookieName,
		Value:    secret,
		Path:     "/",
		MaxAge:   int(cfg.RefreshTokenExpiry.Seconds()),
		HttpOnly: true,
		Secure:   c.Request.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearRefreshCookie expires the refresh cookie; used by logout.
func ClearRefreshCookie(c *gin.Context, cfg *config.AuthConfig) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cfg.RefreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Request.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ikhtibar/internal/model/auth"
	"ikhtibar/internal/pkg/ctxutil"
	"ikhtibar/internal/pkg/httpx"
	"ikhtibar/internal/pkg/jwt"
	"ikhtibar/internal/service"
)

// TokenValidator validates an access token and resolves the caller.
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (*auth.User, *jwt.Claims, error)
}

// PermissionChecker answers effective-permission queries.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID, code string) (bool, error)
}

// Auth validates the Bearer access token and injects the caller's
// identity into the request context. An expired token answers 401 with
// the Token-Expired response header set so the client knows to run the
// refresh flow.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				httpx.NewErrorResponse(40101, "missing or malformed authorization header"))
			return
		}

		user, _, err := validator.ValidateToken(c.Request.Context(), tokenString)
		if err != nil {
			if errors.Is(err, service.ErrExpiredAccessToken) {
				c.Header(HeaderTokenExpired, "true")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				httpx.NewErrorResponse(40102, "invalid or expired token"))
			return
		}

		ident := ctxutil.Identity{
			UserID:   user.ID,
			Username: user.Username,
			Roles:    user.Roles,
		}
		c.Request = c.Request.WithContext(ctxutil.WithIdentity(c.Request.Context(), ident))

		c.Next()
	}
}

// RequireRoles admits only callers carrying at least one of the roles.
// Must run after Auth.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := ctxutil.GetIdentity(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				httpx.NewErrorResponse(40101, "authentication required"))
			return
		}

		for _, role := range roles {
			if ident.HasRole(role) {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden,
			httpx.NewErrorResponse(40301, "insufficient role"))
	}
}

// RequirePermission admits only callers whose effective permission set
// contains the code. Must run after Auth.
func RequirePermission(checker PermissionChecker, code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := ctxutil.GetIdentity(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				httpx.NewErrorResponse(40101, "authentication required"))
			return
		}

		allowed, err := checker.HasPermission(c.Request.Context(), ident.UserID, code)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden,
				httpx.NewErrorResponse(40302, "missing permission: "+code))
			return
		}

		c.Next()
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	"ikhtibar/internal/model/auth"
	"ikhtibar/internal/pkg/ctxutil"
	"ikhtibar/internal/pkg/jwt"
	"ikhtibar/internal/service"
)

// fakeValidator resolves one known token.
type fakeValidator struct {
	token string
	user  *auth.User
	err   error
}

func (f *fakeValidator) ValidateToken(_ context.Context, tokenString string) (*auth.User, *jwt.Claims, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	if tokenString != f.token {
		return nil, nil, service.ErrInvalidAccessToken
	}
	return f.user, &jwt.Claims{UserID: f.user.ID}, nil
}

func newAuthRouter(validator TokenValidator, extra ...gin.HandlerFunc) (*gin.Engine, *ctxutil.Identity) {
	gin.SetMode(gin.TestMode)
	var seen ctxutil.Identity
	r := gin.New()
	handlers := append([]gin.HandlerFunc{Auth(validator)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		seen, _ = ctxutil.GetIdentity(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{})
	})
	r.GET("/protected", handlers...)
	return r, &seen
}

func getProtected(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	user := &auth.User{
		ID:       "user-1",
		Username: "salma",
		Roles:    []string{auth.RoleProctor},
	}

	Convey("Given a protected route", t, func() {
		validator := &fakeValidator{token: "good-token", user: user}
		r, seen := newAuthRouter(validator)

		Convey("A valid bearer token passes and injects the identity", func() {
			w := getProtected(r, "Bearer good-token")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(seen.UserID, ShouldEqual, "user-1")
			So(seen.Username, ShouldEqual, "salma")
		})

		Convey("A missing header is 401", func() {
			w := getProtected(r, "")
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("A malformed header is 401", func() {
			w := getProtected(r, "Token abc")
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("An unknown token is 401 without the expiry hint", func() {
			w := getProtected(r, "Bearer bad-token")
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
			So(w.Header().Get(HeaderTokenExpired), ShouldBeEmpty)
		})
	})

	Convey("Given a validator that reports expiry", t, func() {
		validator := &fakeValidator{err: service.ErrExpiredAccessToken}
		r, _ := newAuthRouter(validator)

		Convey("The 401 carries the Token-Expired hint", func() {
			w := getProtected(r, "Bearer stale-token")
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
			So(w.Header().Get(HeaderTokenExpired), ShouldEqual, "true")
		})
	})

	Convey("Given a role-guarded route", t, func() {
		validator := &fakeValidator{token: "good-token", user: user}

		Convey("A caller with the role passes", func() {
			r, _ := newAuthRouter(validator, RequireRoles(auth.RoleProctor))
			w := getProtected(r, "Bearer good-token")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("A caller without the role is 403", func() {
			r, _ := newAuthRouter(validator, RequireRoles(auth.RoleAdmin))
			w := getProtected(r, "Bearer good-token")
			So(w.Code, ShouldEqual, http.StatusForbidden)
		})
	})
}

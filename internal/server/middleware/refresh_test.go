package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	"ikhtibar/internal/config"
	"ikhtibar/internal/service"
)

// fakeRefresher accepts exactly one secret and returns a fixed pair.
type fakeRefresher struct {
	accept string
	pair   *service.TokenPair
	calls  int
}

func (f *fakeRefresher) Refresh(_ context.Context, secret string) (*service.TokenPair, error) {
	f.calls++
	if secret == f.accept {
		return f.pair, nil
	}
	return nil, service.ErrInvalidRefreshToken
}

func newRefreshRouter(refresher TokenRefresher, cfg *config.AuthConfig) (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)
	var seenAuth string
	r := gin.New()
	r.GET("/api/v1/auth/me", TokenRefresh(refresher, cfg), func(c *gin.Context) {
		seenAuth = c.GetHeader("Authorization")
		c.JSON(http.StatusOK, gin.H{})
	})
	return r, &seenAuth
}

func TestTokenRefreshMiddleware(t *testing.T) {
	expiresAt := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	pair := &service.TokenPair{
		AccessToken:  "fresh-access",
		RefreshToken: "fresh-refresh",
		ExpiresAt:    expiresAt,
		ExpiresIn:    900,
		TokenType:    "Bearer",
	}

	headerCfg := &config.AuthConfig{
		RefreshCookieName:  "ikhtibar_refresh_token",
		RefreshTokenExpiry: 168 * time.Hour,
	}

	Convey("Given a request without the expiry signal", t, func() {
		refresher := &fakeRefresher{accept: "valid-secret", pair: pair}
		r, _ := newRefreshRouter(refresher, headerCfg)

		Convey("The middleware passes through without touching the refresher", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			r.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(refresher.calls, ShouldEqual, 0)
			So(w.Header().Get(HeaderNewAccessToken), ShouldBeEmpty)
		})
	})

	Convey("Given the expiry signal with a valid refresh secret", t, func() {
		refresher := &fakeRefresher{accept: "valid-secret", pair: pair}
		r, seenAuth := newRefreshRouter(refresher, headerCfg)

		Convey("The pair is rotated and the request continues with the fresh token", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			req.Header.Set(HeaderTokenExpired, "true")
			req.Header.Set(HeaderRefreshToken, "valid-secret")
			r.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get(HeaderNewAccessToken), ShouldEqual, "fresh-access")
			So(w.Header().Get(HeaderNewRefreshToken), ShouldEqual, "fresh-refresh")
			So(w.Header().Get(HeaderTokenExpiresAt), ShouldEqual, expiresAt.Format(time.RFC3339))
			So(*seenAuth, ShouldEqual, "Bearer fresh-access")
		})
	})

	Convey("Given the expiry signal without any refresh secret", t, func() {
		refresher := &fakeRefresher{accept: "valid-secret", pair: pair}
		r, _ := newRefreshRouter(refresher, headerCfg)

		Convey("The middleware answers 401 and demands a new login", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			req.Header.Set(HeaderTokenExpired, "true")
			r.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusUnauthorized)
			So(w.Header().Get(HeaderTokenRefreshNeeded), ShouldEqual, "true")
			So(w.Header().Get(HeaderTokenRefreshError), ShouldNotBeEmpty)

			var resp RefreshResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.RequiresRefresh, ShouldBeTrue)
		})
	})

	Convey("Given the expiry signal with a rejected refresh secret", t, func() {
		refresher := &fakeRefresher{accept: "valid-secret", pair: pair}
		r, _ := newRefreshRouter(refresher, headerCfg)

		Convey("The middleware answers the same 401 shape", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			req.Header.Set(HeaderTokenExpired, "true")
			req.Header.Set(HeaderRefreshToken, "stolen-secret")
			r.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusUnauthorized)
			So(w.Header().Get(HeaderTokenRefreshNeeded), ShouldEqual, "true")
		})
	})

	Convey("Given cookie mode", t, func() {
		cookieCfg := &config.AuthConfig{
			UseHTTPOnlyCookies: true,
			RefreshCookieName:  "ikhtibar_refresh_token",
			RefreshTokenExpiry: 168 * time.Hour,
		}
		refresher := &fakeRefresher{accept: "cookie-secret", pair: pair}
		r, _ := newRefreshRouter(refresher, cookieCfg)

		Convey("The secret is read from the cookie and the new one is set back", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			req.Header.Set(HeaderTokenExpired, "true")
			req.AddCookie(&http.Cookie{Name: "ikhtibar_refresh_token", Value: "cookie-secret"})
			r.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)

			cookies := w.Result().Cookies()
			So(len(cookies), ShouldEqual, 1)
			So(cookies[0].Name, ShouldEqual, "ikhtibar_refresh_token")
			So(cookies[0].Value, ShouldEqual, "fresh-refresh")
			So(cookies[0].HttpOnly, ShouldBeTrue)
			So(cookies[0].SameSite, ShouldEqual, http.SameSiteStrictMode)
		})
	})
}

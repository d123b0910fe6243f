package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	"ikhtibar/internal/pkg/ratelimit"
)

func newLimitedRouter(limiter ratelimit.Limiter, loginStatus int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/v1/auth/login", RateLimit(limiter), func(c *gin.Context) {
		c.JSON(loginStatus, gin.H{})
	})
	return r
}

func doLogin(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = ip + ":51434"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := ratelimit.Config{
		MaxAttempts: 5,
		Window:      15 * time.Minute,
		Lockout:     30 * time.Minute,
	}

	Convey("Given a login route behind the limiter where every attempt fails", t, func() {
		r := newLimitedRouter(ratelimit.NewMemory(cfg), http.StatusUnauthorized)

		Convey("The first five attempts reach the handler", func() {
			for i := 0; i < 5; i++ {
				w := doLogin(r, "203.0.113.7")
				So(w.Code, ShouldEqual, http.StatusUnauthorized)
			}

			Convey("and the sixth is rejected with the lockout delay", func() {
				w := doLogin(r, "203.0.113.7")
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(w.Header().Get("Retry-After"), ShouldNotBeEmpty)

				var resp RateLimitResponse
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Error, ShouldEqual, "Too many requests")
				So(resp.RetryAfter, ShouldBeBetweenOrEqual, 1795, 1800)
			})

			Convey("while another address is unaffected", func() {
				w := doLogin(r, "198.51.100.23")
				So(w.Code, ShouldEqual, http.StatusUnauthorized)
			})
		})
	})

	Convey("Given a login route where attempts succeed", t, func() {
		r := newLimitedRouter(ratelimit.NewMemory(cfg), http.StatusOK)

		Convey("Successful requests never accumulate toward a lockout", func() {
			for i := 0; i < 20; i++ {
				w := doLogin(r, "203.0.113.7")
				So(w.Code, ShouldEqual, http.StatusOK)
			}
		})
	})
}

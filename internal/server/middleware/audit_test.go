package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	"ikhtibar/internal/model/audit"
)

// fakeRecorder collects recorded entries.
type fakeRecorder struct {
	mu      sync.Mutex
	entries []*audit.Entry
}

func (f *fakeRecorder) Record(_ context.Context, entry *audit.Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
}

func (f *fakeRecorder) last() *audit.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.entries) == 0 {
		return nil
	}
	return f.entries[len(f.entries)-1]
}

func newAuditRouter(recorder AuditRecorder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Audit(recorder))
	r.POST("/api/v1/auth/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"token": "issued"})
	})
	r.POST("/api/v1/roles", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{})
	})
	r.GET("/api/v1/notifications", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"count": 3})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})
	r.GET("/api/v1/boom", func(c *gin.Context) {
		panic("kaboom")
	})
	return r
}

func TestAuditMiddleware(t *testing.T) {
	Convey("Given an audited router", t, func() {
		recorder := &fakeRecorder{}
		r := newAuditRouter(recorder)

		Convey("A login request is recorded with body and headers redacted", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
				strings.NewReader(`{"username":"salma","password":"hunter2"}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer secret-token")
			r.ServeHTTP(w, req)

			entry := recorder.last()
			So(entry, ShouldNotBeNil)
			So(entry.Path, ShouldEqual, "/api/v1/auth/login")
			So(entry.RequestBody, ShouldEqual, audit.RedactionMarker)
			So(entry.ResponseBody, ShouldEqual, audit.RedactionMarker)
			So(entry.RequestBody, ShouldNotContainSubstring, "hunter2")
			So(entry.Headers["Authorization"], ShouldEqual, audit.RedactionMarker)
			So(entry.Severity, ShouldEqual, audit.SeveritySecurity)
			So(entry.Success, ShouldBeTrue)
		})

		Convey("A role mutation is classified as security", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/roles",
				strings.NewReader(`{"name":"grader"}`))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			entry := recorder.last()
			So(entry, ShouldNotBeNil)
			So(entry.Severity, ShouldEqual, audit.SeveritySecurity)
			So(entry.RequestBody, ShouldContainSubstring, "grader")
			So(entry.StatusCode, ShouldEqual, http.StatusCreated)
		})

		Convey("A plain read is classified as system with its body kept", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
			r.ServeHTTP(w, req)

			entry := recorder.last()
			So(entry, ShouldNotBeNil)
			So(entry.Severity, ShouldEqual, audit.SeveritySystem)
			So(entry.ResponseBody, ShouldContainSubstring, "count")
		})

		Convey("Health probes are not audited", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			r.ServeHTTP(w, req)

			So(recorder.last(), ShouldBeNil)
		})

		Convey("A panic downstream is recorded as a failed entry and re-raised", func() {
			So(func() {
				w := httptest.NewRecorder()
				req := httptest.NewRequest(http.MethodGet, "/api/v1/boom", nil)
				r.ServeHTTP(w, req)
			}, ShouldPanic)

			entry := recorder.last()
			So(entry, ShouldNotBeNil)
			So(entry.Success, ShouldBeFalse)
			So(entry.StatusCode, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

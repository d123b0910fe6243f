package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	"ikhtibar/internal/pkg/apperrors"
	"ikhtibar/internal/pkg/httpx"
)

func newErrorRouter(debugMode bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(debugMode))
	r.GET("/bad", func(c *gin.Context) {
		c.Error(fmt.Errorf("%w: page must be positive", apperrors.ErrInvalidArgument))
	})
	r.GET("/missing", func(c *gin.Context) {
		c.Error(fmt.Errorf("%w: exam", apperrors.ErrNotFound))
	})
	r.GET("/broken", func(c *gin.Context) {
		c.Error(fmt.Errorf("connection pool exhausted"))
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	r.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"fine": true})
	})
	return r
}

func getProblem(r *gin.Engine, path string) (*httptest.ResponseRecorder, *httpx.ProblemDetails) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)

	var problem httpx.ProblemDetails
	if err := json.Unmarshal(w.Body.Bytes(), &problem); err != nil {
		return w, nil
	}
	return w, &problem
}

func TestErrorHandler(t *testing.T) {
	Convey("Given a release-mode router", t, func() {
		r := newErrorRouter(false)

		Convey("An invalid-argument error becomes a 400 problem", func() {
			w, problem := getProblem(r, "/bad")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Header().Get("Content-Type"), ShouldEqual, httpx.ContentTypeProblem)
			So(problem, ShouldNotBeNil)
			So(problem.Title, ShouldEqual, "Bad Request")
			So(problem.Detail, ShouldContainSubstring, "page must be positive")
			So(problem.Instance, ShouldEqual, "/bad")
		})

		Convey("A not-found error becomes a 404 problem", func() {
			w, problem := getProblem(r, "/missing")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(problem.Title, ShouldEqual, "Not Found")
		})

		Convey("An unclassified error becomes a 500 with no internals leaked", func() {
			w, problem := getProblem(r, "/broken")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(problem.Detail, ShouldNotContainSubstring, "connection pool")
			So(problem.Extensions, ShouldBeNil)
		})

		Convey("A panic becomes a 500 with a generic detail", func() {
			w, problem := getProblem(r, "/panic")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(problem.Detail, ShouldNotContainSubstring, "boom")
			So(problem.Extensions, ShouldBeNil)
		})

		Convey("A successful request is untouched", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/ok", nil)
			r.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
		})
	})

	Convey("Given a debug-mode router", t, func() {
		r := newErrorRouter(true)

		Convey("A panic carries the error and stack in extensions", func() {
			w, problem := getProblem(r, "/panic")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(problem.Extensions["error"], ShouldEqual, "boom")
			So(problem.Extensions["stack"], ShouldNotBeEmpty)
		})

		Convey("An unclassified error keeps its text", func() {
			_, problem := getProblem(r, "/broken")
			So(problem.Detail, ShouldContainSubstring, "connection pool")
		})
	})
}

package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"ikhtibar/internal/pkg/httpx"
)

// ErrorHandler is the outermost boundary. It recovers panics and turns
// errors attached to the context into RFC 7807 problem+json responses.
// In debug mode the body carries the error text and a stack trace; in
// release mode the detail stays generic.
func ErrorHandler(debugMode bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("error", r).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("request_id", c.GetString("request_id")).
					Msg("panic recovered")

				problem := httpx.NewProblem(http.StatusInternalServerError, "internal server error", c.Request.URL.Path)
				if debugMode {
					problem.Extensions = map[string]any{
						"error": toString(r),
						"stack": string(debug.Stack()),
					}
				}
				writeProblem(c, problem)
			}
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := httpx.StatusForError(err)

		if status >= 500 {
			log.Error().Err(err).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("request_id", c.GetString("request_id")).
				Msg("request failed")
		}

		detail := "internal server error"
		if status < 500 || debugMode {
			detail = err.Error()
		}

		problem := httpx.NewProblem(status, detail, c.Request.URL.Path)
		if debugMode && status >= 500 {
			problem.Extensions = map[string]any{"error": err.Error()}
		}
		writeProblem(c, problem)
	}
}

// writeProblem renders a problem+json body unless a response has already
// been committed.
func writeProblem(c *gin.Context, problem *httpx.ProblemDetails) {
	if c.Writer.Written() {
		return
	}

	body, err := json.Marshal(problem)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Abort()
	c.Data(problem.Status, httpx.ContentTypeProblem, body)
}

func toString(v any) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return "unknown panic"
}

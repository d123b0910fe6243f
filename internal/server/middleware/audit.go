package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ikhtibar/internal/model/audit"
	"ikhtibar/internal/pkg/ctxutil"
)

// AuditRecorder accepts finished audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry *audit.Entry)
}

// maxAuditBody caps how much of a body is persisted per entry.
const maxAuditBody = 64 << 10

// skippedPrefixes are high-volume or static routes that would drown the
// audit log.
var skippedPrefixes = []string{"/health", "/ready", "/swagger", "/storage"}

// sensitiveHeaders never have their values persisted.
var sensitiveHeaders = map[string]bool{
	"Authorization":    true,
	"Cookie":           true,
	"Set-Cookie":       true,
	"X-Api-Key":        true,
	HeaderRefreshToken: true,
}

// credentialPaths have their whole bodies redacted, request and
// response.
var credentialPaths = []string{"/auth/login", "/auth/register", "password"}

// auditWriter tees the response body while it streams to the client.
type auditWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *auditWriter) Write(b []byte) (int, error) {
	if w.body.Len() < maxAuditBody {
		w.body.Write(b[:min(len(b), maxAuditBody-w.body.Len())])
	}
	return w.ResponseWriter.Write(b)
}

func (w *auditWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Audit records every API request to the audit log. Bodies on
// credential-bearing paths and sensitive header values are replaced by a
// fixed redaction marker before anything is persisted. A panic further
// down the chain is recorded as a failed entry and re-raised for the
// error boundary. Recording is best-effort and never fails the request.
func Audit(recorder AuditRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range skippedPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		start := time.Now()

		requestBody := captureRequestBody(c)

		writer := &auditWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		entry := &audit.Entry{
			Method:    c.Request.Method,
			Path:      path,
			Query:     c.Request.URL.RawQuery,
			Headers:   redactHeaders(c.Request.Header),
			ClientIP:  c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Severity:  classifySeverity(c.Request.Method, path),
		}

		defer func() {
			entry.Duration = time.Since(start)

			if ident, ok := ctxutil.GetIdentity(c.Request.Context()); ok {
				entry.UserID = ident.UserID
				entry.Username = ident.Username
			}

			if r := recover(); r != nil {
				entry.StatusCode = http.StatusInternalServerError
				entry.Success = false
				entry.Severity = audit.SeveritySystem
				entry.RequestBody = redactBody(path, requestBody)
				recorder.Record(detachedContext(c), entry)
				panic(r)
			}

			entry.StatusCode = writer.Status()
			entry.Success = writer.Status() < 400
			entry.RequestBody = redactBody(path, requestBody)
			entry.ResponseBody = redactBody(path, writer.body.String())

			recorder.Record(detachedContext(c), entry)
		}()

		c.Next()
	}
}

// captureRequestBody buffers a textual request body, capped, and
// restores it for downstream handlers. Binary uploads are noted but not
// copied.
func captureRequestBody(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}

	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "multipart/") ||
		strings.HasPrefix(contentType, "application/octet-stream") {
		return "[binary]"
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxAuditBody))
	if err != nil {
		return ""
	}

	rest, _ := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(data), bytes.NewReader(rest)))

	return string(data)
}

// redactHeaders copies the headers, replacing sensitive values.
func redactHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if sensitiveHeaders[http.CanonicalHeaderKey(name)] {
			out[name] = audit.RedactionMarker
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// redactBody replaces a body wholesale when the path carries
// credentials.
func redactBody(path, body string) string {
	if body == "" {
		return ""
	}
	lower := strings.ToLower(path)
	for _, marker := range credentialPaths {
		if strings.Contains(lower, marker) {
			return audit.RedactionMarker
		}
	}
	return body
}

// classifySeverity marks authentication and access-control mutations as
// security entries.
func classifySeverity(method, path string) audit.Severity {
	lower := strings.ToLower(path)

	if strings.Contains(lower, "/auth/") {
		return audit.SeveritySecurity
	}

	if method != http.MethodGet && method != http.MethodHead && method != http.MethodOptions {
		for _, p := range []string{"/users", "/roles", "/permissions", "/settings"} {
			if strings.Contains(lower, p) {
				return audit.SeveritySecurity
			}
		}
	}

	return audit.SeveritySystem
}

// detachedContext keeps the request values but survives the request
// being canceled; the audit write should not die with the client
// connection.
func detachedContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

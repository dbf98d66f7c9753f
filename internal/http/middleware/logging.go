// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// Correlation and logging helpers live here:
//
//   - RequestID() ensures every request carries a correlation ID, propagated
//     via X-Request-ID and stored in the Gin context.
//   - Recovery() turns a panic inside a tutoring handler into the API's JSON
//     error envelope and logs the stack with the request-scoped fields.
//   - LoggerFrom() retrieves the request-scoped logger inside handlers.
//
// The request-scoped logger is installed by RedactingLogger. It is stored
// under the "logger" Gin key and on the request context.Context, so services
// that only see a ctx (zerolog.Ctx) log with the same request_id, student_id
// and conversation_id fields as the handler.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
	loggerKey       = "logger"

	// maxQueryLogLength caps the logged raw query, in bytes.
	maxQueryLogLength = 2048
	// maxRequestIDLength bounds client-supplied correlation IDs.
	maxRequestIDLength = 128
)

// RequestID propagates X-Request-ID, or mints a UUIDv4 when the header is
// missing or longer than maxRequestIDLength.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" || len(rid) > maxRequestIDLength {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// RequestIDFrom returns the correlation ID of the request, or "".
func RequestIDFrom(c *gin.Context) string { return requestIDOf(c) }

// requestIDOf reads the correlation ID set by RequestID, falling back to the
// response header when the middleware runs on a bare engine.
func requestIDOf(c *gin.Context) string {
	if v, ok := c.Get(requestIDKey); ok {
		if s := asString(v); s != "" {
			return s
		}
	}
	return c.Writer.Header().Get(requestIDHeader)
}

// abortError stops the chain with the API error envelope
// {"request_id","code","message"} shared with the handlers package.
func abortError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": requestIDOf(c),
		"code":       code,
		"message":    message,
	})
}

// attachRequestLogger builds the request-scoped logger and installs it on
// both the Gin context and the request context.
func attachRequestLogger(c *gin.Context) zerolog.Logger {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	zc := log.With().
		Str("request_id", requestIDOf(c)).
		Str("method", c.Request.Method).
		Str("path", route)
	if sid, ok := ResolveStudentID(c); ok {
		zc = zc.Str("student_id", sid.String())
	}
	if id := c.Param("id"); id != "" {
		zc = zc.Str("conversation_id", id)
	}
	l := zc.Logger()

	c.Set(loggerKey, &l)
	c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))
	return l
}

// Recovery converts a panic into a 500 "internal_error" envelope. When the
// handler had already started the response only the status is forced, so a
// half-written reply is never followed by a second JSON document.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Bool("response_started", c.Writer.Written()).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header(requestIDHeader, requestIDOf(c))
			abortError(c, http.StatusInternalServerError, "internal_error", "internal server error")
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger, or a child of the global
// logger when none was attached. The result is never nil.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// truncate cuts s to max bytes and appends an ellipsis. max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

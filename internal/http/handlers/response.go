// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response helpers shared by every endpoint: the
// structured error envelope, success writers, and the translation of domain
// error kinds into HTTP statuses and stable codes.
//
// Example error response:
//
//	HTTP/1.1 409 Conflict
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "conversation_not_writable",
//	  "message": "operation denied: conversation 6f1c... is currently archived"
//	}
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"conversation not found with id: 6f1c2a4e-0d3b-4b8e-9a51-2c7d8e9f0a1b"`
}

// fail aborts the request with the error envelope.
func fail(c *gin.Context, status int, code, msg string) {
	failCause(c, status, code, msg, nil)
}

// failCause is fail with the underlying error attached to the log line of a
// server error. The cause never reaches the response body.
func failCause(c *gin.Context, status int, code, msg string, cause error) {
	if status >= http.StatusInternalServerError {
		ev := middleware.LoggerFrom(c).Error()
		if status == http.StatusServiceUnavailable {
			// The teacher being busy or down is an upstream condition.
			ev = middleware.LoggerFrom(c).Warn()
		}
		ev.Int("status", status).
			Str("code", code).
			Str("message", msg).
			AnErr("cause", cause).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: middleware.RequestIDFrom(c),
		Code:      code,
		Message:   msg,
	})
}

// Fail is the exported variant of fail() used by the router fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failErr maps err onto the status and code of its domain kind.
//
//	validation   -> 400 validation_failed
//	not writable -> 409 conversation_not_writable
//	not found    -> 404 not_found
//	generation   -> 503 teacher_unavailable
//	persistence  -> 500 persistence_failed
func failErr(c *gin.Context, err error) {
	var genErr *domain.GenerationError
	switch {
	case errors.Is(err, domain.ErrValidation):
		fail(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, domain.ErrNotWritable):
		fail(c, http.StatusConflict, ErrCodeNotWritable, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.As(err, &genErr):
		failCause(c, http.StatusServiceUnavailable, ErrCodeTeacherUnavailable, genErr.Cause, genErr.Err)
	case errors.Is(err, domain.ErrGeneration):
		failCause(c, http.StatusServiceUnavailable, ErrCodeTeacherUnavailable, "teacher response unavailable", err)
	case errors.Is(err, domain.ErrPersistence):
		failCause(c, http.StatusInternalServerError, ErrCodePersistence, "storage failure", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		failCause(c, http.StatusServiceUnavailable, ErrCodeTeacherUnavailable, "request timed out", err)
	default:
		failCause(c, http.StatusInternalServerError, ErrCodeInternal, "internal error", err)
	}
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// created answers 201 with body and points Location at the new resource,
// a child of the request path.
func created(c *gin.Context, id string, body any) {
	c.Header("Location", strings.TrimSuffix(c.Request.URL.Path, "/")+"/"+id)
	c.JSON(http.StatusCreated, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// envelopeRouter serves GET /x through h with a fixed request id and a
// logger writing to the returned buffer.
func envelopeRouter(h gin.HandlerFunc) (*gin.Engine, *bytes.Buffer) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-env")
		c.Set("logger", &logger)
		c.Next()
	})
	r.GET("/x", h)
	return r, &buf
}

func TestFail_EnvelopeAndLogLevel(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		code    string
		wantLog string // "" means nothing is logged
	}{
		{name: "client error is not logged", status: http.StatusNotFound, code: ErrCodeNotFound},
		{name: "teacher outage warns", status: http.StatusServiceUnavailable, code: ErrCodeTeacherUnavailable, wantLog: "warn"},
		{name: "server error logs at error", status: http.StatusInternalServerError, code: ErrCodeInternal, wantLog: "error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, buf := envelopeRouter(func(c *gin.Context) { Fail(c, tc.status, tc.code, "nope") })
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

			if w.Code != tc.status {
				t.Fatalf("status=%d want %d", w.Code, tc.status)
			}
			var er ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
				t.Fatalf("json: %v", err)
			}
			if er != (ErrorResponse{RequestID: "rid-env", Code: tc.code, Message: "nope"}) {
				t.Fatalf("unexpected body: %+v", er)
			}

			logs := buf.String()
			if tc.wantLog == "" {
				if logs != "" {
					t.Fatalf("unexpected log: %s", logs)
				}
				return
			}
			if !strings.Contains(logs, `"level":"`+tc.wantLog+`"`) || !strings.Contains(logs, `"code":"`+tc.code+`"`) {
				t.Fatalf("expected %s log, got: %s", tc.wantLog, logs)
			}
		})
	}
}

func TestFailCause_LogsCauseButNotInBody(t *testing.T) {
	r, buf := envelopeRouter(func(c *gin.Context) {
		failCause(c, http.StatusInternalServerError, ErrCodePersistence, "storage failure", errors.New("db locked"))
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	if strings.Contains(w.Body.String(), "db locked") {
		t.Fatalf("cause leaked into body: %s", w.Body.String())
	}
	if !strings.Contains(buf.String(), `"cause":"db locked"`) {
		t.Fatalf("cause missing from log: %s", buf.String())
	}
}

func TestSuccessHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/v1/conversations/", func(c *gin.Context) {
		created(c, "c-42", gin.H{"id": "c-42"})
	})
	r.GET("/api/v1/conversations", func(c *gin.Context) {
		ok(c, http.StatusOK, gin.H{"conversations": []string{}})
	})
	r.DELETE("/api/v1/conversations/c-42", func(c *gin.Context) { noContent(c) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/conversations/", nil))
	if w.Code != http.StatusCreated || w.Header().Get("Location") != "/api/v1/conversations/c-42" {
		t.Fatalf("created: status=%d location=%q", w.Code, w.Header().Get("Location"))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil))
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"conversations":[]}` {
		t.Fatalf("ok: status=%d body=%s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/conversations/c-42", nil))
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("noContent: status=%d body=%q", w.Code, w.Body.String())
	}
}

func TestFailErr_MapsDomainKinds(t *testing.T) {
	id := uuid.MustParse("6f1c2a4e-0d3b-4b8e-9a51-2c7d8e9f0a1b")
	busy := "The teacher is currently busy. Please try again later."

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:   "validation",
			err:    fmt.Errorf("%w: title", domain.ErrEmptyTitle),
			status: http.StatusBadRequest,
			code:   ErrCodeValidation,
		},
		{
			name:   "not writable",
			err:    &domain.NotWritableError{ConversationID: id, Status: domain.StatusArchived},
			status: http.StatusConflict,
			code:   ErrCodeNotWritable,
		},
		{
			name:    "not found",
			err:     domain.ConversationNotFound(id),
			status:  http.StatusNotFound,
			code:    ErrCodeNotFound,
			message: "conversation not found with id: " + id.String(),
		},
		{
			name:    "generation shows the student-facing cause",
			err:     &domain.GenerationError{Cause: busy, Err: errors.New("429")},
			status:  http.StatusServiceUnavailable,
			code:    ErrCodeTeacherUnavailable,
			message: busy,
		},
		{
			name:    "wrapped generation sentinel",
			err:     fmt.Errorf("send: %w", domain.ErrGeneration),
			status:  http.StatusServiceUnavailable,
			code:    ErrCodeTeacherUnavailable,
			message: "teacher response unavailable",
		},
		{
			name:    "persistence hides details",
			err:     &domain.PersistenceError{Op: "save conversation", Err: errors.New("disk I/O error")},
			status:  http.StatusInternalServerError,
			code:    ErrCodePersistence,
			message: "storage failure",
		},
		{
			name:    "deadline",
			err:     context.DeadlineExceeded,
			status:  http.StatusServiceUnavailable,
			code:    ErrCodeTeacherUnavailable,
			message: "request timed out",
		},
		{
			name:    "unknown",
			err:     errors.New("boom"),
			status:  http.StatusInternalServerError,
			code:    ErrCodeInternal,
			message: "internal error",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := envelopeRouter(func(c *gin.Context) { failErr(c, tc.err) })
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

			if w.Code != tc.status {
				t.Fatalf("status=%d want %d", w.Code, tc.status)
			}
			var er ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
				t.Fatalf("json: %v", err)
			}
			if er.Code != tc.code || er.RequestID != "rid-env" {
				t.Fatalf("envelope = %+v; want code %q", er, tc.code)
			}
			if tc.message != "" && er.Message != tc.message {
				t.Fatalf("message=%q want %q", er.Message, tc.message)
			}
			if strings.Contains(er.Message, "disk I/O") {
				t.Fatalf("storage details leaked: %q", er.Message)
			}
		})
	}
}

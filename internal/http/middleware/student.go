// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the calling student. There is no authentication layer:
// an upstream proxy (or a test) may set the id on the Gin context, otherwise
// it is taken from the X-Student-ID header and finally from the student_id
// query parameter. Only well-formed UUIDs are accepted; anything else leaves
// the request anonymous and handlers that need a student reject it.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// StudentIDKey is the Gin context key holding the canonical student id.
	StudentIDKey = "studentID"
	// HeaderStudentID carries the student id on requests.
	HeaderStudentID = "X-Student-ID"
	// QueryStudentID is the query-string fallback.
	QueryStudentID = "student_id"
)

// ResolveStudentID returns the canonical student id for c, if any.
func ResolveStudentID(c *gin.Context) (uuid.UUID, bool) {
	if v, ok := c.Get(StudentIDKey); ok {
		switch s := v.(type) {
		case uuid.UUID:
			return s, s != uuid.Nil
		case string:
			if id, err := uuid.Parse(strings.TrimSpace(s)); err == nil {
				return id, true
			}
		}
	}
	if c.Request == nil {
		return uuid.Nil, false
	}
	for _, raw := range []string{c.GetHeader(HeaderStudentID), c.Query(QueryStudentID)} {
		if raw = strings.TrimSpace(raw); raw == "" {
			continue
		}
		if id, err := uuid.Parse(raw); err == nil {
			return id, true
		}
		return uuid.Nil, false
	}
	return uuid.Nil, false
}

// StudentIdentity stores the resolved student id on the Gin context as a
// string so later middleware (rate limiter, idempotency, logs) can key on it.
func StudentIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := ResolveStudentID(c); ok {
			c.Set(StudentIDKey, id.String())
		}
		c.Next()
	}
}

// studentIDFromCtx returns the id stored by StudentIdentity, or "".
func studentIDFromCtx(c *gin.Context) string {
	if v, ok := c.Get(StudentIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

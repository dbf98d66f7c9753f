package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestResolveStudentID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	id := uuid.MustParse("3c2f1e0d-9a8b-4c7d-8e6f-5a4b3c2d1e0f")
	other := uuid.MustParse("11111111-2222-4333-8444-555555555555")

	tests := map[string]struct {
		ctxVal any
		header string
		query  string
		want   uuid.UUID
		ok     bool
	}{
		"none":               {},
		"header":             {header: id.String(), want: id, ok: true},
		"query":              {query: id.String(), want: id, ok: true},
		"header wins":        {header: id.String(), query: other.String(), want: id, ok: true},
		"header padded":      {header: "  " + id.String() + " ", want: id, ok: true},
		"invalid header":     {header: "nope", query: id.String()},
		"context uuid":       {ctxVal: other, header: id.String(), want: other, ok: true},
		"context string":     {ctxVal: other.String(), want: other, ok: true},
		"context nil uuid":   {ctxVal: uuid.Nil},
		"context garbage":    {ctxVal: "xyz", header: id.String(), want: id, ok: true},
		"context wrong type": {ctxVal: 42, query: id.String(), want: id, ok: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			target := "/conversations"
			if tc.query != "" {
				target += "?" + QueryStudentID + "=" + tc.query
			}
			c.Request = httptest.NewRequest(http.MethodGet, target, nil)
			if tc.header != "" {
				c.Request.Header.Set(HeaderStudentID, tc.header)
			}
			if tc.ctxVal != nil {
				c.Set(StudentIDKey, tc.ctxVal)
			}
			got, ok := ResolveStudentID(c)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("got (%s, %v) want (%s, %v)", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestStudentIdentity_StoresCanonicalString(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(StudentIdentity())

	var seen string
	r.GET("/who", func(c *gin.Context) {
		seen = studentIDFromCtx(c)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set(HeaderStudentID, "3C2F1E0D-9A8B-4C7D-8E6F-5A4B3C2D1E0F")
	r.ServeHTTP(w, req)
	if seen != "3c2f1e0d-9a8b-4c7d-8e6f-5a4b3c2d1e0f" {
		t.Fatalf("expected lower-case canonical id, got %q", seen)
	}

	seen = "unset"
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set(HeaderStudentID, "not-a-uuid")
	r.ServeHTTP(w, req)
	if seen != "" {
		t.Fatalf("invalid id must leave the request anonymous, got %q", seen)
	}
}

package httpapi

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-tutor-backend/internal/config"
	"github.com/tbourn/go-tutor-backend/internal/http/middleware"
	"github.com/tbourn/go-tutor-backend/internal/llm"
	"github.com/tbourn/go-tutor-backend/internal/repo"
)

func testConfig() config.Config {
	return config.Config{
		APIBasePath:    "/api/v1",
		RateRPS:        100,
		RateBurst:      50,
		CORS:           config.CORSConfig{AllowedOrigins: nil}, // triggers AllowAllOrigins branch
		Security:       config.SecurityConfig{EnableHSTS: false, HSTSMaxAge: 0},
		OTEL:           config.OTELConfig{ServiceName: "test-svc"},
		Tutor:          config.TutorConfig{MaxMessageRunes: 500, ExchangeCost: 2},
		IdempotencyTTL: time.Hour,
	}
}

func newRouter(t *testing.T, cfg config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, Dependencies{
		Conversations: repo.NewMemoryStore(),
		Idempotency:   repo.NewMemoryIdempotencyStore(),
		Teacher:       llm.NewCannedTeacher(),
	}, cfg)
	return r
}

func serve(r *gin.Engine, method, path, student string, body any) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if student != "" {
		req.Header.Set(middleware.HeaderStudentID, student)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	r := newRouter(t, testConfig())

	// /health works
	w := serve(r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	// CORS (AllowAllOrigins) → header "*"
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}

	// /metrics is wired
	w = serve(r, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK || len(w.Body.Bytes()) == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	// NoRoute → 404
	w = serve(r, http.MethodGet, "/nope", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}

	// NoMethod → 405 (POST /health)
	w = serve(r, http.MethodPost, "/health", "", nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health expected 405, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	cfg := testConfig()
	cfg.APIBasePath = "/api/v2"
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://example.com"}}
	r := newRouter(t, cfg)

	// Any request runs through CORS middleware; header should reflect origin.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// tiny cap to trigger MaxBytesReader
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")) // 12 bytes
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// "/" and "" should mount at root
	root1 := groupWithPrefix(r, "/")
	root1.GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	root2 := groupWithPrefix(r, "")
	root2.GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })

	// non-root prefix
	api := groupWithPrefix(r, "/api")
	api.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for path, want := range map[string]string{"/one": "one", "/two": "two", "/api/ping": "pong"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || rec.Body.String() != want {
			t.Fatalf("GET %s got %d %q", path, rec.Code, rec.Body.String())
		}
	}
}

// Smoke test that a request traverses the otel + request id + security headers pipeline.
func TestPipeline_Smoke(t *testing.T) {
	cfg := testConfig()
	cfg.Security = config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: time.Hour} // enabled (but only set on https)
	r := newRouter(t, cfg)

	w := serve(r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("pipeline GET /health = %d", w.Code)
	}
	if rid := w.Header().Get("X-Request-ID"); rid == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q", got)
	}
	if got := w.Header().Get("Strict-Transport-Security"); got != "" {
		t.Fatalf("HSTS must not be sent over plain http, got %q", got)
	}
}

func TestRegisterRoutes_ConversationFlow(t *testing.T) {
	r := newRouter(t, testConfig())
	student := uuid.NewString()

	w := serve(r, http.MethodPost, "/api/v1/conversations", student, map[string]string{
		"native_lang": "en",
		"target_lang": "fr",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d body=%s", w.Code, w.Body.String())
	}
	var created struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	if created.Title != "French practice" {
		t.Fatalf("default title = %q", created.Title)
	}
	if loc := w.Header().Get("Location"); loc != "/api/v1/conversations/"+created.ID {
		t.Fatalf("Location = %q", loc)
	}

	w = serve(r, http.MethodPost, "/api/v1/conversations/"+created.ID+"/messages", student, map[string]string{
		"student_message": "Bonjour, je m'appelle Anna.",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("send = %d body=%s", w.Code, w.Body.String())
	}
	var sent struct {
		TeacherMessage string `json:"teacher_message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &sent); err != nil {
		t.Fatalf("decode send: %v", err)
	}
	if sent.TeacherMessage == "" {
		t.Fatalf("expected a teacher message")
	}

	w = serve(r, http.MethodGet, "/api/v1/conversations/"+created.ID, student, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get = %d", w.Code)
	}
	var conv struct {
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &conv); err != nil {
		t.Fatalf("decode get: %v", err)
	}
	if len(conv.Messages) != 2 || conv.Messages[0].Role != "student" || conv.Messages[1].Role != "teacher" {
		t.Fatalf("unexpected history: %+v", conv.Messages)
	}

	w = serve(r, http.MethodGet, "/api/v1/conversations", student, nil)
	if w.Code != http.StatusOK || w.Header().Get("ETag") == "" {
		t.Fatalf("list = %d etag=%q", w.Code, w.Header().Get("ETag"))
	}
	if got := w.Header().Get("Cache-Control"); got != "private, no-cache" {
		t.Fatalf("list Cache-Control = %q", got)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil)
	req.Header.Set(middleware.HeaderStudentID, student)
	req.Header.Set("If-None-Match", w.Header().Get("ETag"))
	notModified := httptest.NewRecorder()
	r.ServeHTTP(notModified, req)
	if notModified.Code != http.StatusNotModified {
		t.Fatalf("conditional list = %d", notModified.Code)
	}

	routes := []struct {
		method, path string
		body         any
		want         int
	}{
		{http.MethodPut, "/api/v1/conversations/" + created.ID + "/title", map[string]string{"title": "Café"}, http.StatusNoContent},
		{http.MethodPost, "/api/v1/conversations/" + created.ID + "/archive", nil, http.StatusNoContent},
		{http.MethodDelete, "/api/v1/conversations/" + created.ID, nil, http.StatusNoContent},
	}
	for _, rt := range routes {
		if w := serve(r, rt.method, rt.path, student, rt.body); w.Code != rt.want {
			t.Fatalf("%s %s = %d, want %d (body=%s)", rt.method, rt.path, w.Code, rt.want, w.Body.String())
		}
	}
}

func TestRegisterRoutes_IdempotentReplayBypassesTeacher(t *testing.T) {
	r := newRouter(t, testConfig())
	student := uuid.NewString()

	w := serve(r, http.MethodPost, "/api/v1/conversations", student, map[string]string{"native_lang": "en", "target_lang": "de"})
	var created struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations/"+created.ID+"/messages",
			bytes.NewBufferString(`{"student_message":"Guten Tag"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.HeaderStudentID, student)
		req.Header.Set(middleware.HeaderIdempotencyKey, "retry-1")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	first := send()
	if first.Code != http.StatusOK || first.Header().Get("Idempotency-Replayed") != "" {
		t.Fatalf("first send = %d replayed=%q", first.Code, first.Header().Get("Idempotency-Replayed"))
	}
	second := send()
	if second.Code != http.StatusOK || second.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("second send = %d replayed=%q", second.Code, second.Header().Get("Idempotency-Replayed"))
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replay body differs:\n%s\n%s", first.Body.String(), second.Body.String())
	}

	w = serve(r, http.MethodGet, "/api/v1/conversations/"+created.ID, student, nil)
	var conv struct {
		Messages []json.RawMessage `json:"messages"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &conv)
	if len(conv.Messages) != 2 {
		t.Fatalf("replay must not append messages, got %d", len(conv.Messages))
	}
}

func TestRegisterRoutes_BadIdempotencyKey(t *testing.T) {
	r := newRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations/"+uuid.NewString()+"/messages",
		bytes.NewBufferString(`{"student_message":"hi"}`))
	req.Header.Set(middleware.HeaderStudentID, uuid.NewString())
	req.Header.Set(middleware.HeaderIdempotencyKey, "has spaces")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRegisterRoutes_Gzip(t *testing.T) {
	cfg := testConfig()
	cfg.GzipEnabled = true
	r := newRouter(t, cfg)
	student := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil)
	req.Header.Set(middleware.HeaderStudentID, student)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	if got := w.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Content-Encoding = %q", got)
	}
	zr, err := gzip.NewReader(w.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("inflate: %v", err)
	}
	if !json.Valid(raw) {
		t.Fatalf("inflated body is not JSON: %q", raw)
	}
}

func TestRegisterRoutes_Swagger(t *testing.T) {
	cfg := testConfig()
	cfg.SwaggerEnabled = true
	r := newRouter(t, cfg)

	w := serve(r, http.MethodGet, "/swagger/doc.json", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /swagger/doc.json = %d", w.Code)
	}
	var doc struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode swagger: %v", err)
	}
	if doc.BasePath != "/api/v1" {
		t.Fatalf("basePath = %q", doc.BasePath)
	}
	if _, ok := doc.Paths["/conversations/{id}/messages"]; !ok {
		t.Fatalf("messages path missing from swagger doc")
	}

	// disabled → no route
	r = newRouter(t, testConfig())
	if w := serve(r, http.MethodGet, "/swagger/doc.json", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("swagger disabled expected 404, got %d", w.Code)
	}
}

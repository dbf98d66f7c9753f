package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_DefaultsAndOverrides(t *testing.T) {
	// Clear all env that might affect defaults. t.Setenv isolates per test.
	// Server timeouts / sizes (valid)
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	// Logging / Docs
	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("SWAGGER_ENABLED", "on")
	t.Setenv("API_BASE_PATH", "api/v1/") // no leading slash + trailing slash -> "/api/v1"

	t.Setenv("SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("MAX_BODY_BYTES", "4096")
	t.Setenv("GZIP_ENABLED", "off")

	// Storage / teacher
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/tutor")
	t.Setenv("DB_TRACING", "no")
	t.Setenv("LLM_PROVIDER", "OLLAMA")
	t.Setenv("OLLAMA_BASE_URL", " http://ollama:11434/ ")
	t.Setenv("OLLAMA_MODEL", "llama3.1")
	t.Setenv("LLM_TEMPERATURE", "0.9")
	t.Setenv("LLM_MAX_TOKENS", "512")
	t.Setenv("LLM_TIMEOUT", "30s")
	t.Setenv("MAX_MESSAGE_RUNES", "800")
	t.Setenv("RATE_EXCHANGE_COST", "3")

	// Rate limiting (use invalids for parse to fall back to defaults)
	t.Setenv("RATE_RPS", "x")      // -> default 5.0
	t.Setenv("RATE_BURST", "nope") // -> default 10

	// Web protection
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	// Idempotency
	t.Setenv("IDEMPOTENCY_TTL", "48h")

	// OTEL
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Server
	if cfg.Port != "8088" ||
		cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != 1*time.Second ||
		cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second ||
		cfg.ShutdownTimeout != 5*time.Second ||
		cfg.MaxHeaderBytes != 8192 ||
		cfg.MaxBodyBytes != 4096 ||
		cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}

	// Logging / Docs
	if cfg.LogLevel != "warn" || !cfg.LogPretty || !cfg.SwaggerEnabled || cfg.APIBasePath != "/api/v1" || cfg.GzipEnabled {
		t.Fatalf("logging/docs unexpected: %+v", cfg)
	}

	// Storage / teacher
	if cfg.Storage.Driver != "postgres" || cfg.Storage.DatabaseURL != "postgres://u:p@db:5432/tutor" || cfg.Storage.Tracing {
		t.Fatalf("storage unexpected: %+v", cfg.Storage)
	}
	if cfg.LLM.Provider != "ollama" || cfg.LLM.BaseURL != "http://ollama:11434" || cfg.LLM.Model != "llama3.1" ||
		cfg.LLM.Temperature != 0.9 || cfg.LLM.MaxTokens != 512 || cfg.LLM.Timeout != 30*time.Second {
		t.Fatalf("llm unexpected: %+v", cfg.LLM)
	}
	if got := cfg.LLM.OpenAIBaseURL(); got != "http://ollama:11434/v1" {
		t.Fatalf("OpenAIBaseURL = %q", got)
	}

	if cfg.Tutor.MaxMessageRunes != 800 || cfg.Tutor.ExchangeCost != 3 {
		t.Fatalf("tutor unexpected: %+v", cfg.Tutor)
	}

	// Rate limiting (parse fallback to defaults)
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Fatalf("rate limiting unexpected: %+v", cfg)
	}

	// Web protection
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors origins unexpected: %#v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security unexpected: %+v", cfg.Security)
	}

	// Idempotency
	if cfg.IdempotencyTTL != 48*time.Hour {
		t.Fatalf("idempotency ttl unexpected: %v", cfg.IdempotencyTTL)
	}

	// OTEL
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure || cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel unexpected: %+v", cfg.OTEL)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"invalid LOG_LEVEL", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"blank PORT", map[string]string{"PORT": "   "}, "PORT must not be empty"},
		{"zero read timeout", map[string]string{"READ_TIMEOUT": "0s"}, "timeouts must be positive"},
		{"negative shutdown timeout", map[string]string{"SHUTDOWN_TIMEOUT": "-1s"}, "timeouts must be positive"},
		{"zero header bytes", map[string]string{"MAX_HEADER_BYTES": "0"}, "MAX_HEADER_BYTES"},
		{"negative body bytes", map[string]string{"MAX_BODY_BYTES": "-5"}, "MAX_BODY_BYTES"},
		{"blank DB_PATH", map[string]string{"DB_PATH": "   "}, "DB_PATH must not be empty"},
		{"unknown storage driver", map[string]string{"STORAGE_DRIVER": "mongo"}, "STORAGE_DRIVER"},
		{"postgres without url", map[string]string{"STORAGE_DRIVER": "postgres"}, "DATABASE_URL"},
		{"unknown llm provider", map[string]string{"LLM_PROVIDER": "gpt"}, "LLM_PROVIDER"},
		{"non-http ollama url", map[string]string{"OLLAMA_BASE_URL": "ftp://ollama"}, "OLLAMA_BASE_URL"},
		{"hostless ollama url", map[string]string{"OLLAMA_BASE_URL": "http://"}, "OLLAMA_BASE_URL"},
		{"blank model", map[string]string{"OLLAMA_MODEL": " "}, "OLLAMA_MODEL"},
		{"temperature out of range", map[string]string{"LLM_TEMPERATURE": "2.5"}, "LLM_TEMPERATURE"},
		{"negative max tokens", map[string]string{"LLM_MAX_TOKENS": "-1"}, "LLM_MAX_TOKENS"},
		{"zero llm timeout", map[string]string{"LLM_TIMEOUT": "0s"}, "LLM_TIMEOUT"},
		{"zero message runes", map[string]string{"MAX_MESSAGE_RUNES": "0"}, "MAX_MESSAGE_RUNES"},
		{"zero exchange cost", map[string]string{"RATE_EXCHANGE_COST": "0"}, "RATE_EXCHANGE_COST"},
		{"negative rate rps", map[string]string{"RATE_RPS": "-1"}, "RATE_RPS"},
		{"zero rate burst", map[string]string{"RATE_BURST": "0"}, "RATE_BURST"},
		{"negative hsts max age", map[string]string{"HSTS_MAX_AGE": "-1s"}, "HSTS_MAX_AGE"},
		{"zero idempotency ttl", map[string]string{"IDEMPOTENCY_TTL": "0s"}, "IDEMPOTENCY_TTL"},
		{"sample ratio above one", map[string]string{"OTEL_TRACES_SAMPLER_ARG": "1.5"}, "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Load() error = %v; want it to mention %q", err, tc.want)
			}
		})
	}
}

func TestLoad_MockTeacherSkipsProviderChecks(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "MOCK")
	t.Setenv("OLLAMA_BASE_URL", "not a url")
	t.Setenv("OLLAMA_MODEL", " ")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("mock provider should not validate the ollama settings: %v", err)
	}
	if cfg.LLM.Provider != "mock" {
		t.Fatalf("provider = %q; want mock", cfg.LLM.Provider)
	}
}

func TestEnvAs_FallsBackOnUnsetEmptyOrMalformed(t *testing.T) {
	t.Setenv("TUTOR_EMPTY", "")
	t.Setenv("TUTOR_INT", "42")
	t.Setenv("TUTOR_BAD_INT", "x")
	t.Setenv("TUTOR_FLOAT", "3.14")
	t.Setenv("TUTOR_BAD_FLOAT", "nope")
	t.Setenv("TUTOR_DUR", "150ms")
	t.Setenv("TUTOR_BAD_DUR", "zzz")
	t.Setenv("TUTOR_STR", "val")
	t.Setenv("TUTOR_UPPER", "SQLite")

	if env("TUTOR_UNSET", "d") != "d" || env("TUTOR_EMPTY", "d") != "d" || env("TUTOR_STR", "d") != "val" {
		t.Fatalf("env fallback unexpected")
	}
	if envLower("TUTOR_UPPER", "x") != "sqlite" {
		t.Fatalf("envLower did not lowercase")
	}
	if envInt("TUTOR_INT", 0) != 42 || envInt("TUTOR_BAD_INT", 7) != 7 {
		t.Fatalf("envInt unexpected")
	}
	if envFloat("TUTOR_FLOAT", 0) != 3.14 || envFloat("TUTOR_BAD_FLOAT", 1.23) != 1.23 {
		t.Fatalf("envFloat unexpected")
	}
	if envDuration("TUTOR_DUR", time.Second) != 150*time.Millisecond ||
		envDuration("TUTOR_BAD_DUR", 2*time.Second) != 2*time.Second {
		t.Fatalf("envDuration unexpected")
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in     string
		want   bool
		wantOK bool
	}{
		{"1", true, true},
		{" yes ", true, true},
		{"TRUE", true, true},
		{"On", true, true},
		{"y", true, true},
		{"0", false, true},
		{"FALSE", false, true},
		{" no ", false, true},
		{"Off", false, true},
		{"N", false, true},
		{"maybe", false, false},
	}
	for _, tc := range tests {
		got, err := parseBool(tc.in)
		if (err == nil) != tc.wantOK || got != tc.want {
			t.Fatalf("parseBool(%q) = %v, %v", tc.in, got, err)
		}
	}

	t.Setenv("TUTOR_BOOL_BAD", "maybe")
	if !envBool("TUTOR_BOOL_BAD", true) || envBool("TUTOR_BOOL_BAD", false) {
		t.Fatalf("envBool should keep the default on a malformed value")
	}
}

func TestSplitCSV(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{" , ,", nil},
		{" a, ,b ,  c  ,", []string{"a", "b", "c"}},
		{"https://tutor.example", []string{"https://tutor.example"}},
	}
	for _, tc := range tests {
		if got := splitCSV(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("splitCSV(%q) = %#v; want %#v", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeBasePath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "/"},
		{" / ", "/"},
		{"v1", "/v1"},
		{"/v1/", "/v1"},
		{"api/v1/", "/api/v1"},
		{"//api//", "/api"},
	}
	for _, tc := range tests {
		if got := normalizeBasePath(tc.in); got != tc.want {
			t.Fatalf("normalizeBasePath(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

// Ensure ambient variables do not leak into the defaults.
func TestMain(m *testing.M) {
	for _, k := range []string{
		"PORT", "LOG_LEVEL", "STORAGE_DRIVER", "DB_PATH", "DATABASE_URL",
		"LLM_PROVIDER", "OLLAMA_BASE_URL", "OLLAMA_MODEL", "MAX_MESSAGE_RUNES", "RATE_EXCHANGE_COST",
	} {
		os.Unsetenv(k)
	}
	os.Exit(m.Run())
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIBasePath != "/api/v1" || !cfg.GzipEnabled || cfg.WriteTimeout != 90*time.Second {
		t.Fatalf("server defaults unexpected: %+v", cfg)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.DBPath != "tutor.db" || !cfg.Storage.Tracing {
		t.Fatalf("storage defaults unexpected: %+v", cfg.Storage)
	}
	if cfg.LLM.Provider != "ollama" || cfg.LLM.OpenAIBaseURL() != "http://localhost:11434/v1" ||
		cfg.LLM.Model != "qwen2.5:7b" || cfg.LLM.Temperature != 0.7 || cfg.LLM.Timeout != time.Minute {
		t.Fatalf("llm defaults unexpected: %+v", cfg.LLM)
	}
	if cfg.Tutor.MaxMessageRunes != 4000 || cfg.Tutor.ExchangeCost != 2 {
		t.Fatalf("tutor defaults unexpected: %+v", cfg.Tutor)
	}
	if cfg.IdempotencyTTL != 24*time.Hour || cfg.OTEL.ServiceName != "go-tutor-backend" {
		t.Fatalf("idempotency/otel defaults unexpected: %+v", cfg)
	}
}

func TestMustLoad_Success_NoPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("MustLoad should not panic on valid defaults, got: %v", r)
		}
	}()
	if cfg := MustLoad(); cfg.Port != "8080" {
		t.Fatalf("unexpected port from MustLoad: %q", cfg.Port)
	}
}

// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, storage, the teacher model, rate limiting,
// and observability.
//
// A .env file is optional; cmd/tutor-api loads it (ENV_FILE, default ".env")
// before calling Load, and real environment variables always win.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-tutor-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// StorageConfig selects the conversation store.
type StorageConfig struct {
	Driver      string // STORAGE_DRIVER: sqlite|postgres|memory
	DBPath      string // DB_PATH (sqlite)
	DatabaseURL string // DATABASE_URL (postgres)
	Tracing     bool   // DB_TRACING
}

// LLMConfig configures the teacher model.
type LLMConfig struct {
	Provider    string        // LLM_PROVIDER: ollama|mock
	BaseURL     string        // OLLAMA_BASE_URL, without the /v1 suffix
	Model       string        // OLLAMA_MODEL
	APIKey      string        // LLM_API_KEY (Ollama ignores it, the client requires one)
	Temperature float64       // LLM_TEMPERATURE in [0,2], used for a moderate teacher
	MaxTokens   int           // LLM_MAX_TOKENS, 0 = provider default
	Timeout     time.Duration // LLM_TIMEOUT
}

// OpenAIBaseURL is the OpenAI-compatible endpoint of the provider.
func (c LLMConfig) OpenAIBaseURL() string { return c.BaseURL + "/v1" }

// TutorConfig bounds a single tutoring exchange.
type TutorConfig struct {
	MaxMessageRunes int // MAX_MESSAGE_RUNES, after sanitizing
	ExchangeCost    int // RATE_EXCHANGE_COST, tokens a teacher turn takes from the bucket
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration // covers a full teacher turn
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxHeaderBytes    int
	MaxBodyBytes      int64
	GinMode           string // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool
	SwaggerEnabled bool
	APIBasePath    string
	GzipEnabled    bool

	Storage StorageConfig
	LLM     LLMConfig
	Tutor   TutorConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	CORS     CORSConfig
	Security SecurityConfig

	// IdempotencyTTL is how long a replayable exchange is kept.
	IdempotencyTTL time.Duration

	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		Port:              env("PORT", "8080"),
		ReadTimeout:       envDuration("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: envDuration("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      envDuration("WRITE_TIMEOUT", 90*time.Second),
		IdleTimeout:       envDuration("IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:   envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxHeaderBytes:    envInt("MAX_HEADER_BYTES", 1<<20),
		MaxBodyBytes:      int64(envInt("MAX_BODY_BYTES", 1<<20)),
		GinMode:           envLower("GIN_MODE", "release"),

		LogLevel:       envLower("LOG_LEVEL", "info"),
		LogPretty:      envBool("LOG_PRETTY", false),
		SwaggerEnabled: envBool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(env("API_BASE_PATH", "/api/v1")),
		GzipEnabled:    envBool("GZIP_ENABLED", true),

		Storage: StorageConfig{
			Driver:      envLower("STORAGE_DRIVER", "sqlite"),
			DBPath:      env("DB_PATH", "tutor.db"),
			DatabaseURL: env("DATABASE_URL", ""),
			Tracing:     envBool("DB_TRACING", true),
		},
		LLM: LLMConfig{
			Provider:    envLower("LLM_PROVIDER", "ollama"),
			BaseURL:     strings.TrimRight(strings.TrimSpace(env("OLLAMA_BASE_URL", "http://localhost:11434")), "/"),
			Model:       env("OLLAMA_MODEL", "qwen2.5:7b"),
			APIKey:      env("LLM_API_KEY", "ollama"),
			Temperature: envFloat("LLM_TEMPERATURE", 0.7),
			MaxTokens:   envInt("LLM_MAX_TOKENS", 0),
			Timeout:     envDuration("LLM_TIMEOUT", 60*time.Second),
		},
		Tutor: TutorConfig{
			MaxMessageRunes: envInt("MAX_MESSAGE_RUNES", 4000),
			ExchangeCost:    envInt("RATE_EXCHANGE_COST", 2),
		},

		RateRPS:   envFloat("RATE_RPS", 5.0),
		RateBurst: envInt("RATE_BURST", 10),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(env("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: envBool("ENABLE_HSTS", false),
			HSTSMaxAge: envDuration("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		IdempotencyTTL: envDuration("IDEMPOTENCY_TTL", 24*time.Hour),

		OTEL: OTELConfig{
			Enabled:     envBool("OTEL_ENABLED", false),
			Endpoint:    env("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    envBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: env("OTEL_SERVICE_NAME", "go-tutor-backend"),
			SampleRatio: envFloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	return cfg, cfg.validate()
}

// check pairs a failing condition with the error reported for it.
type check struct {
	failed bool
	msg    string
}

func (c Config) validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	checks := []check{
		{strings.TrimSpace(c.Port) == "", "PORT must not be empty"},
		{c.ReadTimeout <= 0 || c.ReadHeaderTimeout <= 0 || c.WriteTimeout <= 0 ||
			c.IdleTimeout <= 0 || c.ShutdownTimeout <= 0, "timeouts must be positive durations"},
		{c.MaxHeaderBytes <= 0, "MAX_HEADER_BYTES must be > 0"},
		{c.MaxBodyBytes <= 0, "MAX_BODY_BYTES must be > 0"},
	}
	if err := firstFailure(checks); err != nil {
		return err
	}
	if err := validateStorage(c.Storage); err != nil {
		return err
	}
	if err := validateLLM(c.LLM); err != nil {
		return err
	}
	return firstFailure([]check{
		{c.Tutor.MaxMessageRunes < 1, "MAX_MESSAGE_RUNES must be >= 1"},
		{c.Tutor.ExchangeCost < 1, "RATE_EXCHANGE_COST must be >= 1"},
		{c.RateRPS < 0, "RATE_RPS must be >= 0"},
		{c.RateBurst < 1, "RATE_BURST must be >= 1"},
		{c.Security.HSTSMaxAge < 0, "HSTS_MAX_AGE must be >= 0"},
		{c.IdempotencyTTL <= 0, "IDEMPOTENCY_TTL must be > 0"},
		{c.OTEL.SampleRatio < 0 || c.OTEL.SampleRatio > 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]"},
	})
}

func firstFailure(checks []check) error {
	for _, ck := range checks {
		if ck.failed {
			return errors.New(ck.msg)
		}
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch s.Driver {
	case "sqlite":
		if strings.TrimSpace(s.DBPath) == "" {
			return errors.New("DB_PATH must not be empty")
		}
	case "postgres":
		if strings.TrimSpace(s.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is required when STORAGE_DRIVER=postgres")
		}
	case "memory":
	default:
		return errors.New("STORAGE_DRIVER must be one of: sqlite, postgres, memory")
	}
	return nil
}

func validateLLM(l LLMConfig) error {
	switch l.Provider {
	case "mock":
		return nil
	case "ollama":
	default:
		return errors.New("LLM_PROVIDER must be one of: ollama, mock")
	}
	u, err := url.Parse(l.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("OLLAMA_BASE_URL must be an http(s) URL, got %q", l.BaseURL)
	}
	return firstFailure([]check{
		{strings.TrimSpace(l.Model) == "", "OLLAMA_MODEL must not be empty"},
		{l.Temperature < 0 || l.Temperature > 2, "LLM_TEMPERATURE must be in [0,2]"},
		{l.MaxTokens < 0, "LLM_MAX_TOKENS must be >= 0"},
		{l.Timeout <= 0, "LLM_TIMEOUT must be > 0"},
	})
}

// envAs parses variable k with parse, returning def when it is unset, empty
// or malformed.
func envAs[T any](k string, def T, parse func(string) (T, error)) T {
	v, ok := os.LookupEnv(k)
	if !ok || v == "" {
		return def
	}
	out, err := parse(v)
	if err != nil {
		return def
	}
	return out
}

func env(k, def string) string {
	return envAs(k, def, func(s string) (string, error) { return s, nil })
}

func envLower(k, def string) string { return strings.ToLower(env(k, def)) }

func envInt(k string, def int) int { return envAs(k, def, strconv.Atoi) }

func envDuration(k string, def time.Duration) time.Duration {
	return envAs(k, def, time.ParseDuration)
}

func envFloat(k string, def float64) float64 {
	return envAs(k, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func envBool(k string, def bool) bool {
	return envAs(k, def, parseBool)
}

// parseBool accepts the usual switch spellings in any case.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures a leading '/' and strips trailing ones, except
// for the root itself.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}

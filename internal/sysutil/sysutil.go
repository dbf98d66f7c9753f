// Package sysutil holds process-level helpers used by the composition root:
// logger setup and small environment parsing utilities.
package sysutil

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ServiceName is stamped on every log line as "service".
const ServiceName = "tutor-api"

// ParseLevel maps a LOG_LEVEL value to a zerolog level. Blank and unknown
// values fall back to info; "warning" is accepted for warn.
func ParseLevel(lvl string) zerolog.Level {
	s := strings.ToLower(strings.TrimSpace(lvl))
	if s == "warning" {
		s = "warn"
	}
	switch l, err := zerolog.ParseLevel(s); {
	case err != nil, s == "", l < zerolog.DebugLevel, l > zerolog.PanicLevel:
		return zerolog.InfoLevel
	default:
		return l
	}
}

// SetLogLevel applies ParseLevel(lvl) globally.
func SetLogLevel(lvl string) { zerolog.SetGlobalLevel(ParseLevel(lvl)) }

// LogOptions configures the process logger.
type LogOptions struct {
	Level   string
	Pretty  bool      // console writer for local development
	Out     io.Writer // stderr when nil
	Version string    // build version, omitted when blank
}

// ConfigureLogger sets the global level and replaces log.Logger with a JSON
// logger carrying the service name and, when known, the build version.
func ConfigureLogger(opts LogOptions) zerolog.Logger {
	w := opts.Out
	if w == nil {
		w = os.Stderr
	}
	SetLogLevel(opts.Level)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if opts.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	zc := zerolog.New(w).With().Timestamp().Str("service", ServiceName)
	if v := strings.TrimSpace(opts.Version); v != "" {
		zc = zc.Str("version", v)
	}
	log.Logger = zc.Logger()
	return log.Logger
}

// IsTruthy reports whether a query or environment value switches something
// on: "1", "true", "yes", "y" or "on", in any case.
func IsTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

// FirstNonEmpty returns the first non-blank value, unchanged, or "".
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

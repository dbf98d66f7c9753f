package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey carries the client's retry key for a student turn.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"

	defaultIdempotencyKeyLen = 200
)

var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// isExchange reports whether c is a student turn, POST .../:id/messages.
// It is the only operation that can be replayed and the one the rate
// limiter charges extra for.
func isExchange(c *gin.Context) bool {
	return c.Request.Method == http.MethodPost && strings.HasSuffix(c.FullPath(), "/messages")
}

// GetIdempotencyKey returns the validated key stashed by
// IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	s := c.GetString(ctxKeyIdemKey)
	return s, s != ""
}

// IsReplay reports whether a stored exchange exists for this request, in
// which case the handler answers from it without calling the teacher.
func IsReplay(c *gin.Context) bool { return c.GetBool(ctxKeyIdemReplay) }

// IdempotencyOptions configures IdempotencyValidator.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length; <= 0 means 200.
	MaxLen int
	// Pattern restricts allowed characters; nil means ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
	// Now is handed to the lookup; nil means time.Now in UTC.
	Now func() time.Time
}

// IdempotencyLookup reports whether an unexpired exchange is stored for
// (studentID, conversationID, key) at now.
type IdempotencyLookup func(ctx context.Context, studentID, conversationID, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator checks the Idempotency-Key header of unsafe requests
// and stashes the trimmed key for GetIdempotencyKey. An invalid key is
// rejected with 400 "bad_idempotency_key".
//
// For a student turn by a known student the lookup decides whether the
// request is a replay. Replays skip rate limiting; the stored reply itself is
// served by the handler. Lookup failures are ignored and the turn runs
// normally.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = defaultIdempotencyKeyLen
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			key = ""
		}
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			abortError(c, http.StatusBadRequest, "bad_idempotency_key", "invalid Idempotency-Key")
			return
		}
		c.Set(ctxKeyIdemKey, key)

		student, conv := studentIDFromCtx(c), c.Param("id")
		if lookup != nil && isExchange(c) && student != "" && conv != "" {
			exists, err := lookup(c.Request.Context(), student, conv, key, now())
			if err != nil {
				LoggerFrom(c).Warn().Err(err).Msg("idempotency lookup failed")
			} else if exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}

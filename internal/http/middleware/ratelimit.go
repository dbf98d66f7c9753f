// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements an in-memory token-bucket rate limiter with one bucket
// per student (or client IP for anonymous callers). A student turn costs more
// than a read because it occupies the teacher model, so requests may be
// charged a variable number of tokens. Idempotent replays are free.
//
// The limiter is process-local and protects the teacher model from bursts;
// it is not an authorization mechanism.
package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// keyFunc selects the identity used to key a rate-limit bucket.
type keyFunc func(*gin.Context) string

// costFunc returns how many tokens a request consumes.
type costFunc func(*gin.Context) int

// KeyByStudentOrIP prefers the student id stored by StudentIdentity and
// falls back to the client IP address. Keys are prefixed so the two
// namespaces never collide.
func KeyByStudentOrIP() keyFunc {
	return func(c *gin.Context) string {
		if s := studentIDFromCtx(c); s != "" {
			return "student:" + s
		}
		return "ip:" + c.ClientIP()
	}
}

// ExchangeCost charges n tokens for a student turn
// (POST .../messages) and one token for everything else.
func ExchangeCost(n int) costFunc {
	return func(c *gin.Context) int {
		if isExchange(c) {
			return n
		}
		return 1
	}
}

// RateLimiterOption customizes a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithCost sets the per-request token cost.
func WithCost(fn costFunc) RateLimiterOption {
	return func(rl *RateLimiter) {
		if fn != nil {
			rl.costFn = fn
		}
	}
}

// WithIdleTTL sets how long an unused bucket is kept.
func WithIdleTTL(d time.Duration) RateLimiterOption {
	return func(rl *RateLimiter) {
		if d > 0 {
			rl.ttl = d
		}
	}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keys token buckets by identity. Buckets are created on demand
// and idle ones are swept at most once per TTL. Safe for concurrent use.
type RateLimiter struct {
	rps    rate.Limit
	burst  int
	keyFn  keyFunc
	costFn costFunc
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

// NewRateLimiter constructs a RateLimiter refilling rps tokens per second up
// to burst (coerced to at least 1). A nil keyFn keys by student or IP.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc, opts ...RateLimiterOption) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if keyFn == nil {
		keyFn = KeyByStudentOrIP()
	}
	rl := &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		keyFn:   keyFn,
		costFn:  func(*gin.Context) int { return 1 },
		ttl:     10 * time.Minute,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
	for _, o := range opts {
		o(rl)
	}
	rl.lastSweep = rl.now()
	return rl
}

// limiterFor returns the bucket for key, creating it if absent. Idle buckets
// are swept before the lookup so a stale bucket is never refreshed.
func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= rl.ttl {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= rl.ttl {
				delete(rl.buckets, k)
			}
		}
		rl.lastSweep = now
	}

	if b, ok := rl.buckets[key]; ok {
		b.lastSeen = now
		return b.limiter
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.buckets[key] = &bucket{limiter: lim, lastSeen: now}
	return lim
}

// size reports the number of live buckets.
func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// IsRateBypass reports whether IdempotencyValidator marked this request as a
// replay that must not consume tokens.
func IsRateBypass(c *gin.Context) bool { return c.GetBool(ctxKeyRateBypass) }

// cost clamps the request cost to [1, burst]; a cost above the bucket size
// could never be satisfied.
func (rl *RateLimiter) cost(c *gin.Context) int {
	n := rl.costFn(c)
	if n < 1 {
		return 1
	}
	if n > rl.burst {
		return rl.burst
	}
	return n
}

// retryAfter is the whole seconds until n tokens are replenished, at least 1.
func (rl *RateLimiter) retryAfter(n int) string {
	if rl.rps <= 0 {
		return "60"
	}
	secs := int(math.Ceil(float64(n) / float64(rl.rps)))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// Handler returns the Gin middleware. Denied requests get 429 with a
// Retry-After header and the standard error body:
//
//	{"request_id": "<uuid>", "code": "rate_limited", "message": "rate limit exceeded"}
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		n := rl.cost(c)
		if rl.limiterFor(rl.keyFn(c)).AllowN(rl.now(), n) {
			c.Next()
			return
		}

		httpRateLimited.WithLabelValues(callerLabel(c)).Inc()
		c.Header("Retry-After", rl.retryAfter(n))
		abortError(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
	}
}

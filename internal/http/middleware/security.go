// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders, which hardens JSON responses of the
// tutoring API. Conversation histories are private to one student, so
// responses are never stored by shared caches; reads that carry an ETag may
// still be revalidated by the student's own client.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// defaultHSTSMaxAge is used when HSTS is enabled without a max age.
const defaultHSTSMaxAge = 180 * 24 * time.Hour

// exposedHeaders are readable by browser clients once a request id is set.
var exposedHeaders = []string{requestIDHeader, "Idempotency-Replayed", "ETag"}

// SecurityOptions configures SecurityHeaders.
type SecurityOptions struct {
	// EnableHSTS emits Strict-Transport-Security on HTTPS requests only.
	// Enable it only when traffic is HTTPS end-to-end.
	EnableHSTS bool
	// HSTSMaxAge defaults to 180 days when <= 0.
	HSTSMaxAge time.Duration
	// NoStore sends Cache-Control: no-store plus the legacy Pragma/Expires.
	NoStore bool
	// Revalidate relaxes NoStore for GET/HEAD to "private, no-cache" so
	// If-None-Match round trips keep working.
	Revalidate bool
	// EnablePolicy sends Permissions-Policy and X-Permitted-Cross-Domain-Policies.
	EnablePolicy bool
}

func hstsValue(maxAge time.Duration) string {
	if maxAge <= 0 {
		maxAge = defaultHSTSMaxAge
	}
	return "max-age=" + strconv.Itoa(int(maxAge.Seconds())) + "; includeSubDomains; preload"
}

// SecurityHeaders returns a Gin middleware that always sets
// X-Content-Type-Options, X-Frame-Options and Referrer-Policy, and the
// optional headers selected by opt. When X-Request-ID is already on the
// response it is exposed to browsers along with Idempotency-Replayed and ETag.
//
// No Content-Security-Policy is sent; the API never serves HTML outside the
// Swagger UI.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	hsts := hstsValue(opt.HSTSMaxAge)

	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}

		if opt.NoStore {
			safe := c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead
			if opt.Revalidate && safe {
				h.Set("Cache-Control", "private, no-cache")
			} else {
				h.Set("Cache-Control", "no-store")
				h.Set("Pragma", "no-cache")
				h.Set("Expires", "0")
			}
		}

		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}

		if h.Get(requestIDHeader) != "" {
			exposeHeaders(h, exposedHeaders...)
		}

		c.Next()
	}
}

// isHTTPS reports whether the request arrived over TLS, directly or through
// a proxy. Only the first (client-facing) X-Forwarded-Proto hop counts.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	proto, _, _ := strings.Cut(r.Header.Get("X-Forwarded-Proto"), ",")
	return strings.EqualFold(strings.TrimSpace(proto), "https")
}

// exposeHeaders appends names to Access-Control-Expose-Headers, skipping
// any already listed (compared case-insensitively, as whole names).
func exposeHeaders(h http.Header, names ...string) {
	const hdr = "Access-Control-Expose-Headers"
	var list []string
	seen := map[string]struct{}{}
	for _, n := range strings.Split(h.Get(hdr), ",") {
		if n = strings.TrimSpace(n); n != "" {
			list = append(list, n)
			seen[strings.ToLower(n)] = struct{}{}
		}
	}
	for _, n := range names {
		if _, ok := seen[strings.ToLower(n)]; ok {
			continue
		}
		seen[strings.ToLower(n)] = struct{}{}
		list = append(list, n)
	}
	h.Set(hdr, strings.Join(list, ", "))
}

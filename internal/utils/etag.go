package utils

import (
	"fmt"
	"strings"
)

// WeakETag formats parts as a weak validator: W/"p1:p2:...".
func WeakETag(parts ...any) string {
	var b strings.Builder
	b.WriteString(`W/"`)
	for i, p := range parts {
		if i > 0 {
			b.WriteByte(':')
		}
		fmt.Fprint(&b, p)
	}
	b.WriteByte('"')
	return b.String()
}

// ETagMatches reports whether an If-None-Match header value matches etag.
// It accepts "*" and comma-separated lists, and compares weakly, so the W/
// prefix is ignored on both sides.
func ETagMatches(ifNoneMatch, etag string) bool {
	if etag == "" {
		return false
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, cand := range strings.Split(ifNoneMatch, ",") {
		cand = strings.TrimSpace(cand)
		if cand == "*" || (cand != "" && strings.TrimPrefix(cand, "W/") == want) {
			return true
		}
	}
	return false
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"syscall"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// Causes reported to students. They never carry provider details.
const (
	CauseTimeout     = "The teacher took too long to answer."
	CauseCanceled    = "The request was cancelled."
	CauseBusy        = "The teacher is currently busy. Please try again later."
	CauseAuth        = "Teacher service configuration error (Auth)."
	CauseForbidden   = "Access denied to the learning service."
	CauseUnavailable = "The teacher service is currently unavailable."
	CauseEmpty       = "The teacher service returned an empty response."
	CauseUnexpected  = "An unexpected error occurred."
)

// The OpenAI client reports HTTP failures as text, e.g.
// "error, status code: 429, status: 429 Too Many Requests, message: ...".
var statusCodeRE = regexp.MustCompile(`status code: (\d{3})`)

func statusCode(err error) int {
	m := statusCodeRE.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout())
}

func isConnectionFailure(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "connection refused") || strings.Contains(low, "no such host")
}

// classify maps a provider error to a GenerationError.
func classify(err error) *domain.GenerationError {
	var ge *domain.GenerationError
	if errors.As(err, &ge) {
		return ge
	}
	cause := CauseUnexpected
	switch {
	case isTimeout(err):
		cause = CauseTimeout
	case errors.Is(err, context.Canceled):
		cause = CauseCanceled
	case isConnectionFailure(err):
		cause = CauseUnavailable
	default:
		switch code := statusCode(err); {
		case code == 429:
			cause = CauseBusy
		case code == 401:
			cause = CauseAuth
		case code == 403:
			cause = CauseForbidden
		case code >= 400:
			cause = fmt.Sprintf("Teacher service encountered an error (%d).", code)
		}
	}
	return &domain.GenerationError{Cause: cause, Err: err}
}

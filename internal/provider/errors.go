package provider

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Kind string

const (
	KindAuthentication Kind = "authentication"
	KindRateLimit      Kind = "rate_limit"
	KindServer         Kind = "server"
	KindRequest        Kind = "request"
)

// Error is returned for any non-2xx upstream response. It never carries credentials.
type Error struct {
	Provider   string
	Status     int
	StatusText string
	Kind       Kind
	Code       int
	Message    string
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s api error %d", e.Provider, e.Status)
	if e.StatusText != "" {
		fmt.Fprintf(&b, " %s", e.StatusText)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.RetryAfter > 0 {
		fmt.Fprintf(&b, " (retry after %s)", e.RetryAfter)
	}
	return b.String()
}

// Transient reports whether a later identical request could succeed.
func (e *Error) Transient() bool {
	return e.Kind == KindRateLimit || e.Kind == KindServer
}

// AsError unwraps err to a *Error.
func AsError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// ParseRetryAfter reads a Retry-After header given in (possibly fractional) seconds.
func ParseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

// Snippet truncates an upstream body for inclusion in an error message.
func Snippet(body []byte, limit int) string {
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit]
	}
	return s
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/sells-group/site-analyzer/internal/resilience"
)

// ProviderError wraps a failed provider call. StatusCode is zero when the
// request never got an HTTP response.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("llm: %s returned status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("llm: %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Kind classifies provider failures for user-facing error mapping.
type Kind string

const (
	KindAuth    Kind = "auth"
	KindQuota   Kind = "quota"
	KindNetwork Kind = "network"
	KindUnknown Kind = "unknown"
)

var (
	authMarkers    = []string{"api key", "api_key", "apikey", "unauthorized", "permission denied"}
	quotaMarkers   = []string{"quota", "rate limit", "rate_limit", "resource_exhausted", "too many requests"}
	networkMarkers = []string{"network", "connection", "timeout", "no such host", "unavailable"}
)

// Classify maps err to a Kind using the HTTP status when known and the
// error text otherwise.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		switch {
		case pe.StatusCode == http.StatusUnauthorized || pe.StatusCode == http.StatusForbidden:
			return KindAuth
		case pe.StatusCode == http.StatusTooManyRequests:
			return KindQuota
		case pe.StatusCode >= 500 || pe.StatusCode == http.StatusRequestTimeout:
			return KindNetwork
		}
	}

	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}

	msg := strings.ToLower(err.Error())
	for _, group := range []struct {
		kind    Kind
		markers []string
	}{
		{KindAuth, authMarkers},
		{KindQuota, quotaMarkers},
		{KindNetwork, networkMarkers},
	} {
		for _, m := range group.markers {
			if strings.Contains(msg, m) {
				return group.kind
			}
		}
	}
	return KindUnknown
}

// IsRetryable reports whether a failed generation is worth retrying.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, resilience.ErrCircuitOpen) {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) && pe.StatusCode > 0 {
		return resilience.IsTransientHTTPStatus(pe.StatusCode)
	}
	return resilience.IsTransient(err)
}

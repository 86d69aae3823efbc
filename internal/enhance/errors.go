package enhance

import (
	"errors"
	"fmt"
	"syscall"
)

var (
	// ErrNotConfigured is returned when no active session exists.
	ErrNotConfigured = errors.New("enhancement is not configured")

	// ErrInvalidAPIKey is returned on 401/403 responses. Never retried.
	ErrInvalidAPIKey = errors.New("invalid API key")

	// ErrRateLimited is returned on 429 responses. Retryable.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrEnhancementFailed is returned when a success payload cannot be
	// parsed into text. Never retried.
	ErrEnhancementFailed = errors.New("enhancement produced no usable output")
)

// NetworkError wraps a transport-level failure. Retryable.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network error: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a 5xx response. Retryable.
type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Status, e.Body)
}

// HTTPError is any other unexpected status. Not retried.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// maxErrorBodyBytes truncates response bodies carried inside errors.
const maxErrorBodyBytes = 512

func truncateBody(body []byte) string {
	if len(body) > maxErrorBodyBytes {
		return string(body[:maxErrorBodyBytes]) + "..."
	}
	return string(body)
}

// classifyStatus maps an HTTP status to the pipeline error taxonomy.
// 200 is success; anything else is an error of a fixed class.
func classifyStatus(status int, body []byte) error {
	switch {
	case status == 200:
		return nil
	case status == 429:
		return fmt.Errorf("%w (status 429)", ErrRateLimited)
	case status == 401 || status == 403:
		return fmt.Errorf("%w (status %d)", ErrInvalidAPIKey, status)
	case status >= 500 && status <= 599:
		return &ServerError{Status: status, Body: truncateBody(body)}
	default:
		return &HTTPError{Status: status, Body: truncateBody(body)}
	}
}

// connectivityErrnos are the OS-level failures treated as transient.
var connectivityErrnos = []syscall.Errno{
	syscall.ECONNRESET,
	syscall.ECONNREFUSED,
	syscall.ETIMEDOUT,
	syscall.EPIPE,
}

// isTransient reports whether a failure is worth retrying: network errors,
// 5xx, 429, and a small set of connectivity errnos. Credential and
// malformed-response failures are permanent.
func isTransient(err error) bool {
	var netErr *NetworkError
	var srvErr *ServerError
	if errors.As(err, &netErr) || errors.As(err, &srvErr) {
		return true
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	for _, errno := range connectivityErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

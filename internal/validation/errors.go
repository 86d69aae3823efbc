package validation

import (
	"fmt"
	"time"

	"github.com/nextlevelbuilder/dictaflow/internal/provider"
)

// Kind is the user-facing validation error taxonomy.
type Kind string

const (
	KindTimeout             Kind = "timeout"
	KindInvalidCredentials  Kind = "invalid_credentials"
	KindRateLimited         Kind = "rate_limited"
	KindNetwork             Kind = "network"
	KindProviderUnavailable Kind = "provider_unavailable"
	KindUnknown             Kind = "unknown"
)

// Error is a validation failure presented to the user. It is retained by the
// service until dismissed or until a new validation starts.
type Error struct {
	Kind       Kind
	Provider   provider.ID
	StatusCode int           // 0 when not HTTP-derived
	RetryAfter time.Duration // only for KindRateLimited, 0 when unknown
	Detail     string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTimeout:
		return "the provider did not respond in time"
	case KindInvalidCredentials:
		return fmt.Sprintf("%s rejected the credentials", e.Provider)
	case KindRateLimited:
		return "the provider is rate limiting requests"
	case KindNetwork:
		return "could not reach the provider: " + e.Detail
	case KindProviderUnavailable:
		return fmt.Sprintf("%s is temporarily unavailable", e.Provider)
	default:
		return "validation failed: " + e.Detail
	}
}

// Recovery returns a short suggestion for resolving the error.
func (e *Error) Recovery() string {
	switch e.Kind {
	case KindTimeout:
		return "Check your network connection and try again."
	case KindInvalidCredentials:
		return "Re-check the API key or credential profile."
	case KindRateLimited:
		if e.RetryAfter > 0 {
			return fmt.Sprintf("Wait %s before retrying.", e.RetryAfter)
		}
		return "Wait a moment before retrying."
	case KindNetwork:
		return "Check your network connection."
	case KindProviderUnavailable:
		return "Try again later."
	default:
		return "Try again, or pick a different configuration."
	}
}

// FromStatus maps an HTTP status to the validation taxonomy. This mapping is
// the single source of truth for both the background switch validation and
// the quick verify-and-save flow.
func FromStatus(p provider.ID, status int, retryAfter time.Duration) *Error {
	switch {
	case status == 401 || status == 403:
		return &Error{Kind: KindInvalidCredentials, Provider: p, StatusCode: status}
	case status == 429:
		return &Error{Kind: KindRateLimited, Provider: p, StatusCode: status, RetryAfter: retryAfter}
	case status >= 500 && status <= 599:
		return &Error{Kind: KindProviderUnavailable, Provider: p, StatusCode: status}
	default:
		return &Error{Kind: KindUnknown, Provider: p, StatusCode: status,
			Detail: fmt.Sprintf("unexpected status %d", status)}
	}
}

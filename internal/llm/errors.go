package llm

import (
	"fmt"
	"net/http"
)

// Kind classifies a transport failure for the retry policy.
type Kind int

const (
	// KindFatal errors are never retried.
	KindFatal Kind = iota
	// KindRateLimited marks HTTP 429 / resource-exhaustion failures.
	KindRateLimited
	// KindOverloaded marks HTTP 503 / transient-overload failures.
	KindOverloaded
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate-limited"
	case KindOverloaded:
		return "overloaded"
	default:
		return "fatal"
	}
}

// Error is a transport failure tagged with its retry classification.
// The tag is attached at the transport boundary so the retry policy can
// switch on structured data instead of matching message strings.
type Error struct {
	Kind    Kind
	Status  int // HTTP status, 0 when not applicable
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transport error (%s, status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("transport error (%s): %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.err
}

// Retryable reports whether the retry policy should re-attempt the call.
func (e *Error) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindOverloaded
}

func classifyStatus(status int) Kind {
	switch status {
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusServiceUnavailable:
		return KindOverloaded
	default:
		return KindFatal
	}
}

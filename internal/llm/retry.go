package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

const (
	maxAttempts   = 3
	backoffFactor = 2
)

// baseDelay is a variable so tests can shrink it.
var baseDelay = 2000 * time.Millisecond

// WithRetry invokes op, retrying rate-limited and overloaded failures with
// bounded exponential backoff. Attempt n sleeps base * factor^(n-1) before
// the next call. Any other failure propagates immediately.
//
// When retries are exhausted on a rate-limit error the caller gets a
// user-facing message naming the attempt count; an exhausted overload error
// propagates unchanged.
func WithRetry(ctx context.Context, op func(context.Context) (*Response, error)) (*Response, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := op(ctx)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var terr *Error
		if !errors.As(err, &terr) || !terr.Retryable() {
			return nil, err
		}
		if attempt == maxAttempts {
			break
		}

		delay := baseDelay
		for i := 1; i < attempt; i++ {
			delay *= backoffFactor
		}
		log.Printf("Transient LLM failure (%s), retrying in %s (attempt %d/%d)", terr.Kind, delay, attempt, maxAttempts)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	var terr *Error
	if errors.As(lastErr, &terr) && terr.Kind == KindRateLimited {
		return nil, fmt.Errorf("the AI service is rate limiting requests; gave up after %d attempts, please wait a moment and try again", maxAttempts)
	}
	return nil, lastErr
}

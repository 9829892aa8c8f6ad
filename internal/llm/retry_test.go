package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
)

func shrinkBackoff(t *testing.T) {
	t.Helper()
	orig := baseDelay
	baseDelay = 2 * time.Millisecond
	t.Cleanup(func() { baseDelay = orig })
}

func TestWithRetryRateLimitedExhaustsAttempts(t *testing.T) {
	shrinkBackoff(t)

	calls := 0
	var delays []time.Duration
	last := time.Now()

	_, err := WithRetry(context.Background(), func(context.Context) (*Response, error) {
		now := time.Now()
		if calls > 0 {
			delays = append(delays, now.Sub(last))
		}
		last = now
		calls++
		return nil, &Error{Kind: KindRateLimited, Status: http.StatusTooManyRequests, Message: "quota exceeded"}
	})

	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !strings.Contains(err.Error(), "3 attempts") {
		t.Errorf("expected rate-limit message naming attempt count, got %q", err)
	}
	// time.After guarantees at least the requested duration: base, then base*2.
	if len(delays) != 2 {
		t.Fatalf("expected 2 delays, got %d", len(delays))
	}
	if delays[0] < baseDelay {
		t.Errorf("first delay %v shorter than base %v", delays[0], baseDelay)
	}
	if delays[1] < 2*baseDelay {
		t.Errorf("second delay %v shorter than doubled base %v", delays[1], 2*baseDelay)
	}
}

func TestWithRetryOverloadedPropagatesLastError(t *testing.T) {
	shrinkBackoff(t)

	overloaded := &Error{Kind: KindOverloaded, Status: http.StatusServiceUnavailable, Message: "model overloaded"}
	calls := 0
	_, err := WithRetry(context.Background(), func(context.Context) (*Response, error) {
		calls++
		return nil, overloaded
	})

	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
	var terr *Error
	if !errors.As(err, &terr) || terr.Kind != KindOverloaded {
		t.Errorf("expected last overload error to propagate unchanged, got %v", err)
	}
}

func TestWithRetryFatalCalledOnce(t *testing.T) {
	shrinkBackoff(t)

	calls := 0
	_, err := WithRetry(context.Background(), func(context.Context) (*Response, error) {
		calls++
		return nil, &Error{Kind: KindFatal, Status: http.StatusBadRequest, Message: "invalid request"}
	})

	if calls != 1 {
		t.Errorf("expected exactly 1 attempt for a fatal error, got %d", calls)
	}
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestWithRetryUntaggedErrorNotRetried(t *testing.T) {
	shrinkBackoff(t)

	calls := 0
	wantErr := errors.New("plain failure")
	_, err := WithRetry(context.Background(), func(context.Context) (*Response, error) {
		calls++
		return nil, wantErr
	})

	if calls != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", calls)
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("expected original error, got %v", err)
	}
}

func TestWithRetrySuccessAfterTransientFailure(t *testing.T) {
	shrinkBackoff(t)

	calls := 0
	resp, err := WithRetry(context.Background(), func(context.Context) (*Response, error) {
		calls++
		if calls < 2 {
			return nil, &Error{Kind: KindOverloaded, Status: http.StatusServiceUnavailable, Message: "overloaded"}
		}
		return &Response{Text: "ok"}, nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
	if resp.Text != "ok" {
		t.Errorf("expected response text ok, got %q", resp.Text)
	}
}

func TestWithRetrySuccessImmediately(t *testing.T) {
	resp, err := WithRetry(context.Background(), func(context.Context) (*Response, error) {
		return &Response{Text: "done"}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "done" {
		t.Errorf("got %q", resp.Text)
	}
}

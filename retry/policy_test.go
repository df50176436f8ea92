package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/annoq/jobqueue/retry"
)

func TestComputeDelayBounds(t *testing.T) {
	base := 200 * time.Millisecond
	max := 5 * time.Second
	for n := 0; n < 6; n++ {
		d := retry.ComputeDelay(n, base, max)
		lower := base << uint(n)
		if lower > max {
			if d != max {
				t.Fatalf("attempt %d: expected exactly max once exponent exceeds it, got %v", n, d)
			}
			continue
		}
		if d < lower || d >= lower+base {
			if d != max {
				t.Fatalf("attempt %d: delay %v out of [%v, %v)", n, d, lower, lower+base)
			}
		}
	}
}

func TestDefaultClassifierSSRFBlocked(t *testing.T) {
	err := &retry.HandlerError{Err: errors.New("blocked"), Code: "ssrf_blocked"}
	if retry.DefaultClassifier(err) {
		t.Fatal("expected ssrf_blocked to be non-retryable")
	}
}

func TestDefaultClassifierNetworkPattern(t *testing.T) {
	err := errors.New("dial tcp: connect: ECONNREFUSED")
	if !retry.DefaultClassifier(err) {
		t.Fatal("expected network error to be retryable")
	}
}

func TestDefaultClassifierStatusRanges(t *testing.T) {
	serverErr := &retry.HandlerError{Err: errors.New("server error"), Status: 503}
	if !retry.DefaultClassifier(serverErr) {
		t.Fatal("expected 5xx to be retryable")
	}
	clientErr := &retry.HandlerError{Err: errors.New("bad request"), Status: 400}
	if retry.DefaultClassifier(clientErr) {
		t.Fatal("expected 4xx to be non-retryable")
	}
}

func TestDefaultClassifierUnknownDefaultsRetryable(t *testing.T) {
	if !retry.DefaultClassifier(errors.New("something odd happened")) {
		t.Fatal("expected unknown error to default to retryable")
	}
}

func TestDoRetriesThenSucceeds(t *testing.T) {
	var calls int
	err := retry.Do(context.Background(), retry.Policy{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	}, func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("ECONNRESET")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestDoAbortsOnNonRetryable(t *testing.T) {
	var calls int
	sentinel := &retry.HandlerError{Err: errors.New("blocked"), Code: "ssrf_blocked"}
	err := retry.Do(context.Background(), retry.Policy{MaxRetries: 5}, func(ctx context.Context) error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) && err != sentinel {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly 1 call, got %d", calls)
	}
}

package retry

import (
	"context"
	"math/rand"
	"regexp"
	"strings"
	"time"
)

// Policy configures the retry primitive.
//
// MaxRetries defaults to 3, BaseDelay to 200ms, MaxDelay to 5s.
// RetryOn, if nil, defaults to DefaultClassifier.
type Policy struct {
	MaxRetries uint32
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	RetryOn    func(error) bool
}

func (p Policy) withDefaults() Policy {
	if p.MaxRetries == 0 {
		p.MaxRetries = 3
	}
	if p.BaseDelay == 0 {
		p.BaseDelay = 200 * time.Millisecond
	}
	if p.MaxDelay == 0 {
		p.MaxDelay = 5 * time.Second
	}
	if p.RetryOn == nil {
		p.RetryOn = DefaultClassifier
	}
	return p
}

// ComputeDelay returns the backoff delay for the n-th (0-indexed) retry:
//
//	min(base * 2^n + uniform_random[0, base), max)
func ComputeDelay(n int, base, max time.Duration) time.Duration {
	if n < 0 {
		n = 0
	}
	exp := base << uint(n)
	if exp <= 0 || exp > max { // overflow or past the ceiling
		exp = max
	}
	jitter := time.Duration(0)
	if base > 0 {
		jitter = time.Duration(rand.Int63n(int64(base)))
	}
	delay := exp + jitter
	if delay > max {
		delay = max
	}
	return delay
}

// Do runs fn, retrying on failure according to policy. It sleeps the
// computed backoff delay between attempts, aborts immediately when
// policy.RetryOn rejects an error, and returns the last error once
// retries are exhausted. ctx cancellation aborts a pending sleep.
func Do(ctx context.Context, policy Policy, fn func(ctx context.Context) error) error {
	p := policy.withDefaults()
	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if uint32(attempt) >= p.MaxRetries {
			return lastErr
		}
		if !p.RetryOn(lastErr) {
			return lastErr
		}
		delay := ComputeDelay(attempt, p.BaseDelay, p.MaxDelay)
		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(delay):
		}
	}
}

var (
	fourXX = regexp.MustCompile(`\b4\d{2}\b`)
	fiveXX = regexp.MustCompile(`\b5\d{2}\b`)
)

var networkPatterns = []string{
	"econnrefused", "econnreset", "enotfound", "etimedout",
	"eai_again", "und_err", "fetch failed", "network",
}

// DefaultClassifier implements the default retryability rules:
//
//   - SSRF-blocked errors (code "ssrf_blocked") are never retried.
//   - Cancellation/timeout errors are never retried.
//   - Errors whose message matches a known network-failure substring,
//     or that carry a 5xx status, are retried.
//   - Errors carrying an explicit 4xx status, or whose message contains
//     a 4xx substring without any 5xx/network signal, are not retried.
//   - Anything else is retried (unknown errors default to retryable).
func DefaultClassifier(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := CodeOf(err); ok && code == "ssrf_blocked" {
		return false
	}
	if IsCancelled(err) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range networkPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	if status, ok := StatusOf(err); ok {
		if status >= 500 && status < 600 {
			return true
		}
		if status >= 400 && status < 500 {
			return false
		}
	}
	if fourXX.MatchString(msg) && !fiveXX.MatchString(msg) {
		return false
	}
	return true
}

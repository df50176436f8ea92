package retry

import (
	"context"
	"errors"
)

// HandlerError lets a handler or validator attach a machine-readable
// Code (e.g. "ssrf_blocked") and/or an HTTP-like Status to an error, so
// DefaultClassifier can make a retryability decision without parsing
// free-form messages.
type HandlerError struct {
	Err    error
	Code   string
	Status int
}

func (e *HandlerError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return "handler error"
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// CodeOf extracts a Code from err if it (or something it wraps) is a
// *HandlerError.
func CodeOf(err error) (string, bool) {
	var he *HandlerError
	if errors.As(err, &he) && he.Code != "" {
		return he.Code, true
	}
	return "", false
}

// StatusOf extracts a Status from err if it (or something it wraps) is
// a *HandlerError with a non-zero Status.
func StatusOf(err error) (int, bool) {
	var he *HandlerError
	if errors.As(err, &he) && he.Status != 0 {
		return he.Status, true
	}
	return 0, false
}

// IsCancelled reports whether err represents context cancellation or
// deadline expiry.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

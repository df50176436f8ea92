// Package retry provides the bounded, exponential-backoff-plus-jitter
// retry primitive shared across annoq: handler-failure classification
// for the queue's own retry/requeue decision, and a standalone Do
// helper used for short-lived operations such as webhook delivery.
//
// # Delay formula
//
// For attempt n (0-indexed):
//
//	delay = min(base * 2^n + uniform_random[0, base), max)
//
// # Classification
//
// DefaultClassifier distinguishes terminal errors (SSRF-blocked,
// cancellation/timeout, 4xx-without-network-signature) from retryable
// ones (known network error substrings, 5xx status, anything unknown).
package retry

// Package webhook delivers terminal-job notifications over HTTP.
//
// Delivery is at-most-twice: one attempt, and on a non-2xx response or
// transport error, one retry after a fixed delay. A second failure is
// logged by the caller and abandoned; webhook delivery never persists
// a pending notification and never blocks the queue's own state
// machine.
//
// The SSRF check on the target URL is an external concern, injected as
// a URLValidator so this package stays agnostic to DNS resolution and
// private-network policy.
package webhook

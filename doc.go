// Package annoq provides the persistent job queue core behind a
// multi-tenant content-extraction platform: a bounded worker pool with
// priority ordering, an explicit job state machine, live progress
// fan-out, SSRF-protected webhook delivery on completion, and a
// pluggable durable store (Redis or in-memory).
//
// # Overview
//
// annoq accepts typed work requests (job.Type: fetch, crawl, extract,
// workflow) through Enqueue, holds them in a priority queue, and
// dispatches them to registered handlers as worker capacity frees up.
// Handler outcomes drive state transitions that are persisted to a
// Store and fanned out to progress subscribers.
//
// # Delivery Semantics
//
// A job is owned by exactly one holder: the in-memory overlay while
// non-terminal, the durable store always. Status is monotonic — once a
// job reaches a terminal state (completed, failed, cancelled) it never
// transitions again, and cancellation always wins over a late handler
// resolution.
//
// # State Machine
//
//	queued  -> running
//	running -> completed  (terminal)
//	running -> queued     (retry, attempts <= options.Retries)
//	running -> failed     (terminal)
//	queued  -> cancelled  (terminal)
//	running -> cancelled  (terminal)
//
// # Scheduling
//
// A periodic tick dispatches as many queued jobs as available worker
// capacity allows, in strictly non-increasing priority order with
// FIFO tie-breaking. Priority insertion uses binary search over a
// sorted slice; dispatch pops from the front.
//
// # Queue/Store Boundary
//
// GetJob and ListJobs overlay the in-memory table — authoritative for
// live and recently-terminal jobs — over the durable store, which
// holds the full history (subject to its own TTL/cleanup policy).
// Persistence is fire-and-forget: the queue never blocks its
// synchronous API on store I/O, and a store failure is logged, never
// raised to the caller.
//
// # Progress Fan-out
//
// Subscribers register a callback for one job id. A callback that
// panics is recovered and logged; it never affects other subscribers
// or the queue. StreamProgress is a convenience built on the same
// registration, buffering events into an unbounded internal queue
// until the caller pulls them, ending at the first terminal event.
//
// # Webhook Delivery
//
// When a handler run ends in a terminal state (completed or failed),
// if options.WebhookURL is set, annoq validates it through an injected
// URLValidator (SSRF protection), then POSTs a completion payload with
// a short timeout and at most one retry. A second failure, or validator
// rejection, is logged and abandoned — webhook delivery is
// at-most-twice, best-effort. A job ended by Cancel gets no webhook.
//
// # Concurrency Model
//
// Workers run up to Config.Concurrency handlers concurrently. The
// scheduler tick runs on a single timer. Progress fan-out, persistence
// and webhook delivery run concurrently with handler execution. A
// single-writer discipline per job id is expected: only the dispatching
// goroutine or the Cancel API mutates a given job's status.
//
// # Non-goals
//
// Distributed multi-node scheduling, exactly-once webhook delivery,
// cross-tenant fairness, multi-queue routing beyond type->handler
// dispatch, and persistence of in-flight progress events across
// process restarts are explicitly out of scope.
package annoq

package annoq

import "errors"

// ErrInvalidType is returned by Enqueue when the job type is not one of
// the closed set {fetch, crawl, extract, workflow}.
var ErrInvalidType = errors.New("annoq: invalid job type")

// errTimeout is used as the context cancellation cause when a job's
// timeout fires, distinguishing it from explicit cancellation.
var errTimeout = errors.New("annoq: timed out or was aborted")

// errCancelled is used as the context cancellation cause for explicit
// Cancel calls.
var errCancelled = errors.New("annoq: cancelled")

// ErrJobNotFound is returned by Cancel when the given id names no
// known job.
var ErrJobNotFound = errors.New("annoq: job not found")

// ErrJobTerminal is returned by Cancel when the job has already
// reached a terminal status.
var ErrJobTerminal = errors.New("annoq: job already terminal")

// ErrQueueRunning is returned by RegisterHandler once the queue has
// been started; handlers must be registered up front.
var ErrQueueRunning = errors.New("annoq: queue already running")

// errHandlerMissing fails a job immediately when no handler was ever
// registered for its type. Its text surfaces in the job's Error field,
// so it carries no package prefix; execute wraps it with the type name.
var errHandlerMissing = errors.New("No handler registered for job type")

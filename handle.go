package annoq

import (
	"context"
	"sync/atomic"
	"time"
)

// executionHandle is the in-memory-only control block for a running
// job: a cancellation signaller, a timeout timer, and a flag recording
// whether the timeout fired (vs. an explicit Cancel). It is created on
// dispatch and destroyed on terminal transition.
type executionHandle struct {
	cancel   context.CancelCauseFunc
	timer    *time.Timer
	timedOut atomic.Bool
}

func newExecutionHandle(parent context.Context, timeout time.Duration) (context.Context, *executionHandle) {
	ctx, cancel := context.WithCancelCause(parent)
	h := &executionHandle{cancel: cancel}
	h.timer = time.AfterFunc(timeout, func() {
		h.timedOut.Store(true)
		cancel(errTimeout)
	})
	return ctx, h
}

// stop cancels the timeout timer. It must be called once the handler
// has returned, regardless of outcome.
func (h *executionHandle) stop() {
	h.timer.Stop()
}

// abort cancels the handle's context with the explicit-cancellation
// cause, used by the Cancel API on a running job.
func (h *executionHandle) abort() {
	h.timer.Stop()
	h.cancel(errCancelled)
}

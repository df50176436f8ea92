package annoq

import (
	"context"
	"log/slog"
	"time"

	"github.com/annoq/jobqueue/internal"
)

// CleanupWorker periodically invokes Store.Cleanup, sweeping terminal
// records older than MaxAge from the durable backend on a fixed
// interval. It is independent of Queue's own in-memory eviction and
// may be run whether or not a Queue is active.
//
// Unlike Queue, CleanupWorker follows a strict lifecycle: Start may
// only be called once, and Stop must be called to terminate it.
type CleanupWorker struct {
	lcBase
	store    Store
	task     internal.TimerTask
	interval time.Duration
	maxAge   time.Duration
	log      *slog.Logger
}

// NewCleanupWorker builds a worker that calls store.Cleanup(ctx,
// maxAge) every interval.
func NewCleanupWorker(store Store, interval, maxAge time.Duration, log *slog.Logger) *CleanupWorker {
	if log == nil {
		log = slog.Default()
	}
	return &CleanupWorker{
		store:    store,
		interval: interval,
		maxAge:   maxAge,
		log:      log,
	}
}

func (cw *CleanupWorker) clean(ctx context.Context) {
	removed, err := cw.store.Cleanup(ctx, cw.maxAge)
	if err != nil {
		cw.log.Error("store cleanup failed", "err", err)
		return
	}
	if removed > 0 {
		cw.log.Info("cleaned terminal jobs", "count", removed)
	}
}

// Start begins periodic cleanup. It returns ErrDoubleStarted if
// already running.
func (cw *CleanupWorker) Start(ctx context.Context) error {
	if err := cw.tryStart(); err != nil {
		return err
	}
	cw.task.Start(ctx, cw.clean, cw.interval)
	return nil
}

// Stop halts the worker, waiting up to timeout for the in-flight pass
// to finish. It returns ErrDoubleStopped if not running, or
// ErrStopTimeout if timeout elapses first.
func (cw *CleanupWorker) Stop(timeout time.Duration) error {
	return cw.tryStop(timeout, cw.task.Stop)
}

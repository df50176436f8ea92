package annoq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/annoq/jobqueue/internal"
	"github.com/annoq/jobqueue/job"
	"github.com/annoq/jobqueue/retry"
)

const (
	retryBaseDelay = 200 * time.Millisecond
	retryMaxDelay  = 5 * time.Second
)

// ProgressFunc lets a running handler publish incremental progress. It
// is safe to call from the handler's goroutine only, and has no effect
// once the job has left the running state.
type ProgressFunc func(percent int, message string)

// Handler processes one job and returns its result, or an error to be
// classified for retry. record is an immutable snapshot taken at
// dispatch; besides record.Payload it carries the job's Options and
// Attempts. ctx is cancelled when the job's timeout elapses or it is explicitly
// cancelled; well-behaved handlers must observe it.
type Handler func(ctx context.Context, record *job.Record, report ProgressFunc) (result any, err error)

// webhookSender delivers a terminal-state notification for rec to url.
// It is implemented by package webhook's Deliverer.
type webhookSender interface {
	Send(ctx context.Context, url string, rec *job.Record) error
}

type webhookTask struct {
	url string
	rec *job.Record
}

// Queue is the in-process scheduler: a priority-ordered pending set,
// a bounded pool of concurrent handler invocations, a subscriber
// registry for progress fan-out, and an optional webhook delivery
// pool. The in-memory state is authoritative for active jobs; Store is
// its durable mirror, fed a snapshot of every transition through a
// background persistence pipeline.
type Queue struct {
	cfg     Config
	store   Store
	log     *slog.Logger
	webhook webhookSender

	mu            sync.Mutex
	handlers      map[job.Type]Handler
	records       map[job.ID]*job.Record
	pending       priorityQueue
	running       map[job.ID]*executionHandle
	terminalOrder []job.ID

	subs *subscribers

	// persistBuf feeds the background persistence pipeline: one
	// goroutine draining an unbounded FIFO, alive for the Queue's
	// lifetime, so store writes land in transition order without any
	// caller ever blocking on store I/O.
	persistBuf *internal.Unbounded[*job.Record]

	pool        *internal.WorkerPool[job.ID]
	webhookPool *internal.WorkerPool[webhookTask]
	dispatcher  internal.TimerTask

	started    atomic.Bool
	stopCancel context.CancelFunc
}

// NewQueue constructs a Queue backed by store. webhook may be nil, in
// which case terminal jobs with a WebhookURL set are never delivered.
func NewQueue(cfg Config, store Store, log *slog.Logger, webhook webhookSender) *Queue {
	cfg = cfg.normalize()
	if log == nil {
		log = slog.Default()
	}
	q := &Queue{
		cfg:      cfg,
		store:    store,
		log:      log,
		webhook:  webhook,
		handlers: make(map[job.Type]Handler),
		records:  make(map[job.ID]*job.Record),
		running:  make(map[job.ID]*executionHandle),
		subs:     newSubscribers(log),
	}
	q.persistBuf = internal.NewUnbounded[*job.Record]()
	go q.persistLoop()
	q.pool = internal.NewWorkerPool[job.ID](cfg.Concurrency, 0, log)
	if webhook != nil {
		q.webhookPool = internal.NewWorkerPool[webhookTask](cfg.WebhookConcurrency, cfg.WebhookConcurrency, log)
	}
	return q
}

// RegisterHandler binds h to t. Handlers must be registered before
// Start; calling it afterward returns ErrQueueRunning.
func (q *Queue) RegisterHandler(t job.Type, h Handler) error {
	if !t.Valid() {
		return ErrInvalidType
	}
	if q.started.Load() {
		return ErrQueueRunning
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[t] = h
	return nil
}

// Start begins dispatching queued jobs. It is idempotent: calling
// Start on an already-started Queue is a no-op.
func (q *Queue) Start() {
	if !q.started.CompareAndSwap(false, true) {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	q.stopCancel = cancel
	q.pool.Start(ctx, q.execute)
	if q.webhookPool != nil {
		q.webhookPool.Start(ctx, q.deliverWebhook)
	}
	q.dispatcher.Start(ctx, q.tick, q.cfg.TickInterval)
}

// Stop halts dispatch and waits for in-flight handlers and webhook
// deliveries to finish, or ctx to be cancelled. It is idempotent:
// calling Stop before Start, or twice, is a safe no-op.
func (q *Queue) Stop(ctx context.Context) error {
	if !q.started.CompareAndSwap(true, false) {
		return nil
	}
	dispatchDone := q.dispatcher.Stop()
	poolDone := q.pool.Stop()
	whDone := closedDone()
	if q.webhookPool != nil {
		whDone = q.webhookPool.Stop()
	}
	q.stopCancel()
	all := internal.Combine(internal.Combine(dispatchDone, poolDone), whDone)
	select {
	case <-all:
		return nil
	case <-ctx.Done():
		return ErrStopTimeout
	}
}

func closedDone() internal.DoneChan {
	c := make(internal.DoneChan)
	close(c)
	return c
}

// Enqueue validates and admits a new job, returning its id.
func (q *Queue) Enqueue(t job.Type, payload any, opts job.Options) (job.ID, error) {
	if !t.Valid() {
		return "", ErrInvalidType
	}
	if err := opts.Validate(); err != nil {
		return "", err
	}
	opts = opts.Normalize()

	rec := &job.Record{
		ID:        job.NewID(),
		Type:      t,
		Status:    job.Queued,
		Payload:   payload,
		Options:   opts,
		CreatedAt: time.Now(),
	}

	q.mu.Lock()
	q.records[rec.ID] = rec
	q.pending.insert(rec.ID, rec.Options.Priority)
	snap := rec.Clone()
	q.mu.Unlock()

	q.persist(snap)
	return rec.ID, nil
}

// Cancel aborts a queued or running job. A terminal job cannot be
// cancelled and returns ErrJobTerminal. Cancel does not schedule a
// webhook delivery for the cancelled job.
func (q *Queue) Cancel(id job.ID) error {
	q.mu.Lock()
	rec := q.records[id]
	if rec == nil {
		q.mu.Unlock()
		return ErrJobNotFound
	}
	if rec.Status.IsTerminal() {
		q.mu.Unlock()
		return ErrJobTerminal
	}
	if handle, ok := q.running[id]; ok {
		handle.abort()
	}
	now := time.Now()
	rec.Status = job.Cancelled
	rec.CompletedAt = &now
	q.evictIfTerminal(rec)
	snap := rec.Clone()
	q.mu.Unlock()

	q.persist(snap)
	return nil
}

// GetJob returns the current record for id: the live in-memory
// snapshot if the job is still tracked, otherwise the durable copy.
// nil means no record could be found; a store failure on the fallback
// path is logged and reported as absence.
func (q *Queue) GetJob(ctx context.Context, id job.ID) *job.Record {
	q.mu.Lock()
	if rec, ok := q.records[id]; ok {
		q.mu.Unlock()
		return rec.Clone()
	}
	q.mu.Unlock()
	rec, err := q.store.Get(ctx, id)
	if err != nil {
		q.log.Error("store get failed", "job", id, "err", err)
		return nil
	}
	return rec
}

// ListJobs overlays the live in-memory table onto the durable store's
// view: in-memory entries win for ids present in both, store-only
// entries (evicted or historical) are appended, and filtering, sorting
// by CreatedAt descending, and paging are re-applied over the merge.
// A store failure is logged and the result degrades to the in-memory
// view alone.
func (q *Queue) ListJobs(ctx context.Context, filter Filter) []*job.Record {
	unpaged := filter
	unpaged.Limit = 0
	unpaged.Offset = 0
	stored, err := q.store.List(ctx, unpaged)
	if err != nil {
		q.log.Error("store list failed", "err", err)
		stored = nil
	}

	merged := make(map[job.ID]*job.Record, len(stored))
	for _, rec := range stored {
		merged[rec.ID] = rec
	}

	q.mu.Lock()
	for id, rec := range q.records {
		if !matchesFilter(rec, filter) {
			delete(merged, id)
			continue
		}
		merged[id] = rec.Clone()
	}
	q.mu.Unlock()

	out := make([]*job.Record, 0, len(merged))
	for _, rec := range merged {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*job.Record{}
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out
}

func matchesFilter(rec *job.Record, filter Filter) bool {
	if filter.Status != job.Unknown && rec.Status != filter.Status {
		return false
	}
	if filter.Type != "" && rec.Type != filter.Type {
		return false
	}
	return true
}

// GetStats reports a point-in-time snapshot of the in-memory table:
// per-status counts, the registered handler types, and the scheduler's
// live counters. It never touches the store.
func (q *Queue) GetStats() Stats {
	q.mu.Lock()
	stats := Stats{
		Total:          len(q.records),
		PendingInQueue: q.pending.len(),
		ActiveWorkers:  len(q.running),
	}
	for _, rec := range q.records {
		switch rec.Status {
		case job.Queued:
			stats.Queued++
		case job.Running:
			stats.Running++
		case job.Completed:
			stats.Completed++
		case job.Failed:
			stats.Failed++
		case job.Cancelled:
			stats.Cancelled++
		}
	}
	stats.Handlers = make([]job.Type, 0, len(q.handlers))
	for t := range q.handlers {
		stats.Handlers = append(stats.Handlers, t)
	}
	q.mu.Unlock()
	sort.Slice(stats.Handlers, func(i, j int) bool { return stats.Handlers[i] < stats.Handlers[j] })
	return stats
}

// StreamProgress yields id's current snapshot first, then every
// subsequent Event for it, until ctx is cancelled, the returned stop
// function is called, or a terminal event is delivered. If id names no
// known job (live or durable) the sequence ends immediately; if id is
// already terminal, the current snapshot is the only event yielded.
// Delivery is buffered without bound so a slow reader never blocks
// dispatch.
func (q *Queue) StreamProgress(ctx context.Context, id job.ID) (<-chan Event, func()) {
	buf := internal.NewUnbounded[Event]()
	var unsub func()
	var once sync.Once
	done := make(chan struct{})
	stop := func() {
		once.Do(func() {
			if unsub != nil {
				unsub()
			}
			buf.Close()
			close(done)
		})
	}

	// Subscribe before taking the initial snapshot so a terminal
	// transition cannot slip between the two and leave the stream open
	// forever; initMu holds deliveries back until the snapshot has been
	// sent, keeping it the stream's first event.
	var initMu sync.Mutex
	initMu.Lock()
	unsub = q.subs.subscribe(id, func(evt Event) {
		initMu.Lock()
		initMu.Unlock()
		buf.Send(evt)
		if evt.Record.Status.IsTerminal() {
			stop()
		}
	})

	initial := q.GetJob(ctx, id)
	if initial == nil {
		initMu.Unlock()
		stop()
		return buf.C(), stop
	}
	buf.Send(Event{Record: initial})
	if initial.Status.IsTerminal() {
		initMu.Unlock()
		stop()
		return buf.C(), stop
	}
	initMu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-done:
		}
	}()
	return buf.C(), stop
}

// tick is the dispatcher's periodic handler: it admits as many pending
// jobs as there are free worker slots, in priority order.
func (q *Queue) tick(ctx context.Context) {
	for {
		q.mu.Lock()
		if len(q.running) >= q.cfg.Concurrency {
			q.mu.Unlock()
			return
		}
		e := q.pending.popFront()
		if e == nil {
			q.mu.Unlock()
			return
		}
		rec := q.records[e.id]
		if rec == nil || rec.Status != job.Queued {
			q.mu.Unlock()
			continue
		}
		q.mu.Unlock()
		if !q.pool.Push(e.id) {
			return
		}
	}
}

// execute runs one job's handler to completion (or cancellation) and
// resolves its terminal or retry transition. It is invoked by the
// worker pool, which bounds how many executions run concurrently.
func (q *Queue) execute(ctx context.Context, id job.ID) {
	q.mu.Lock()
	rec := q.records[id]
	if rec == nil || rec.Status != job.Queued {
		q.mu.Unlock()
		return
	}
	now := time.Now()
	rec.Status = job.Running
	rec.StartedAt = &now
	rec.Progress = 0
	rec.Attempts++
	handler := q.handlers[rec.Type]
	timeout := rec.Options.Timeout
	runCtx, handle := newExecutionHandle(ctx, timeout)
	q.running[id] = handle
	snap := rec.Clone()
	q.mu.Unlock()

	q.persist(snap)

	var result any
	var herr error
	if handler == nil {
		herr = fmt.Errorf("%w '%s'", errHandlerMissing, rec.Type)
	} else {
		report := func(percent int, message string) { q.reportProgress(id, percent, message) }
		result, herr = handler(runCtx, snap, report)
	}
	handle.stop()
	timedOut := handle.timedOut.Load()

	q.mu.Lock()
	delete(q.running, id)
	rec = q.records[id]
	if rec == nil || rec.Status == job.Cancelled {
		q.mu.Unlock()
		return
	}
	switch {
	case timedOut:
		q.resolveFailure(rec, nil, true)
	case herr != nil:
		q.resolveFailure(rec, herr, false)
	default:
		completedAt := time.Now()
		rec.Status = job.Completed
		rec.CompletedAt = &completedAt
		rec.Result = result
		rec.Progress = 100
		rec.Error = ""
	}
	q.evictIfTerminal(rec)
	snap = rec.Clone()
	q.mu.Unlock()

	q.persist(snap)
	if snap.Status.IsTerminal() && snap.Options.WebhookURL != "" && q.webhook != nil {
		q.webhookPool.Push(webhookTask{url: snap.Options.WebhookURL, rec: snap})
	}
}

// resolveFailure decides, under q.mu, whether rec's handler error
// earns a retry (re-queue after backoff) or a terminal failure. A
// timed-out run always fails terminally with the canonical timeout
// message regardless of what the handler itself returned: it still
// counts as an attempt but never triggers a new one.
func (q *Queue) resolveFailure(rec *job.Record, herr error, timedOut bool) {
	completedAt := time.Now()
	if timedOut {
		rec.Error = "timed out or was aborted"
		rec.Status = job.Failed
		rec.CompletedAt = &completedAt
		return
	}
	rec.Error = herr.Error()
	retryable := !errors.Is(herr, errHandlerMissing) && retry.DefaultClassifier(herr)
	if retryable && rec.Attempts <= rec.Options.Retries {
		rec.Status = job.Queued
		delay := retry.ComputeDelay(rec.Attempts-1, retryBaseDelay, retryMaxDelay)
		q.scheduleRequeue(rec.ID, delay)
		return
	}
	rec.Status = job.Failed
	rec.CompletedAt = &completedAt
}

// scheduleRequeue re-admits id to the pending queue after delay,
// unless the job was cancelled or deleted in the meantime.
func (q *Queue) scheduleRequeue(id job.ID, delay time.Duration) {
	time.AfterFunc(delay, func() {
		q.mu.Lock()
		rec := q.records[id]
		if rec == nil || rec.Status != job.Queued {
			q.mu.Unlock()
			return
		}
		q.pending.insert(id, rec.Options.Priority)
		q.mu.Unlock()
	})
}

// evictIfTerminal appends rec to the terminal-completion order and
// drops the oldest in-memory terminal records once the overlay grows
// past MaxCompletedJobs. Evicted records remain retrievable from the
// durable store until its own Cleanup removes them.
func (q *Queue) evictIfTerminal(rec *job.Record) {
	if !rec.Status.IsTerminal() {
		return
	}
	q.terminalOrder = append(q.terminalOrder, rec.ID)
	for len(q.terminalOrder) > q.cfg.MaxCompletedJobs {
		oldest := q.terminalOrder[0]
		q.terminalOrder = q.terminalOrder[1:]
		delete(q.records, oldest)
	}
}

// reportProgress applies a handler's progress update to the live
// record, persists it, and fans it out to StreamProgress subscribers.
func (q *Queue) reportProgress(id job.ID, percent int, message string) {
	q.mu.Lock()
	rec := q.records[id]
	if rec == nil || rec.Status != job.Running {
		q.mu.Unlock()
		return
	}
	rec.Progress = job.ClampProgress(percent)
	rec.StatusMessage = message
	snap := rec.Clone()
	q.mu.Unlock()

	q.persist(snap)
}

// persist hands rec to the persistence pipeline and fans it out to
// subscribers. The caller never waits on store I/O; a store failure is
// logged inside the pipeline, never surfaced: in-memory state remains
// authoritative regardless.
func (q *Queue) persist(rec *job.Record) {
	q.persistBuf.Send(rec)
	q.subs.emit(Event{Record: rec})
}

func (q *Queue) persistLoop() {
	for rec := range q.persistBuf.C() {
		if err := q.store.Set(context.Background(), rec); err != nil {
			q.log.Error("store set failed", "job", rec.ID, "err", err)
		}
	}
}

func (q *Queue) deliverWebhook(ctx context.Context, t webhookTask) {
	if err := q.webhook.Send(ctx, t.url, t.rec); err != nil {
		q.log.Warn("webhook delivery failed", "job", t.rec.ID, "url", t.url, "err", err)
	}
}

package annoq

import "github.com/annoq/jobqueue/job"

// Stats is a point-in-time snapshot of queue composition, derived
// entirely from the in-memory table and the scheduler's live counters.
// Terminal counts are bounded by Config.MaxCompletedJobs: evicted
// records survive only in the durable store and are not counted here.
type Stats struct {
	Queued    int
	Running   int
	Completed int
	Failed    int
	Cancelled int

	// Total is the number of records in the in-memory table across
	// every status.
	Total int

	// Handlers lists the job types with a registered handler, sorted.
	Handlers []job.Type

	// PendingInQueue is the number of entries in the priority queue
	// waiting for a free worker slot right now. Queued jobs mid-backoff
	// are not among them; entries of jobs cancelled while queued stay
	// counted until dispatch pops and skips them.
	PendingInQueue int
	// ActiveWorkers is the number of handler invocations in flight.
	ActiveWorkers int
}

package job

import "time"

// Record is the unit of durable state tracked by annoq.
//
// A Record is created by Queue.Enqueue and mutated only by the queue's
// own worker loop, progress callback, cancellation path and retry
// scheduler. Copies returned to callers (via Store.Get, Queue.GetJob,
// Queue.ListJobs, …) are snapshots: mutating them has no effect on queue
// or store state.
//
// The json tags fix the durable wire format: anything reading
// anno:job:{id} directly, whether another process or an operator
// inspecting the store, sees exactly this shape.
type Record struct {
	ID      ID      `json:"id"`
	Type    Type    `json:"type"`
	Status  Status  `json:"status"`
	Payload any     `json:"payload,omitempty"`
	Options Options `json:"options"`

	Progress      int    `json:"progress"`
	StatusMessage string `json:"statusMessage,omitempty"`
	Result        any    `json:"result,omitempty"`
	Error         string `json:"error,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	Attempts int `json:"attempts"`
}

// Clone returns a defensive deep-enough copy of r: scalar fields and
// Options are copied by value, pointer timestamp fields get their own
// backing storage, Options.Metadata gets its own map (values shared),
// and Payload/Result retain reference semantics (they are submitter-
// or handler-owned opaque values, not queue state).
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := *r
	if r.StartedAt != nil {
		t := *r.StartedAt
		clone.StartedAt = &t
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		clone.CompletedAt = &t
	}
	if r.Options.Metadata != nil {
		md := make(map[string]any, len(r.Options.Metadata))
		for k, v := range r.Options.Metadata {
			md[k] = v
		}
		clone.Options.Metadata = md
	}
	return &clone
}

// ClampProgress folds p into the valid [0, 100] range, per the progress
// clamp invariant.
func ClampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

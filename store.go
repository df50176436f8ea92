package annoq

import (
	"context"
	"time"

	"github.com/annoq/jobqueue/job"
)

// Filter restricts List and Count to a subset of records.
//
// A zero Status or empty Type means "no filter on this field". Limit
// and Offset page a result already sorted by CreatedAt descending; an
// Offset at or beyond the total yields an empty result.
type Filter = job.Filter

// Store is the durable persistence contract consumed by Queue. It is
// implemented by both a Durable backend (package redis) and a Volatile
// backend (package memory); the queue is agnostic to which one it
// holds.
//
// Store operations may fail transiently; the Queue logs failures and
// continues with in-memory state as authoritative (see invariant:
// persistence never reverts in-memory state nor fails a caller).
// Implementations must never panic.
type Store interface {
	// Get returns the record identified by id, or (nil, nil) if no such
	// record exists. The returned Record is an independent snapshot.
	Get(ctx context.Context, id job.ID) (*job.Record, error)

	// Set upserts rec. Implementations must atomically maintain any
	// creation-ordered and status-keyed indices they expose, removing
	// the previous status index entry when an existing record's status
	// changes. Terminal records must be persisted with a TTL; non-terminal
	// records must carry none.
	Set(ctx context.Context, rec *job.Record) error

	// Delete removes the record identified by id (and any index
	// entries), reporting whether a record existed.
	Delete(ctx context.Context, id job.ID) (bool, error)

	// List returns records matching filter, sorted by CreatedAt
	// descending, honoring Limit/Offset.
	List(ctx context.Context, filter Filter) ([]*job.Record, error)

	// Count returns the total number of records matching filter,
	// ignoring Limit/Offset.
	Count(ctx context.Context, filter Filter) (int64, error)

	// Cleanup removes terminal records whose age exceeds maxAge,
	// leaving non-terminal records untouched regardless of age, and
	// reports how many were removed.
	Cleanup(ctx context.Context, maxAge time.Duration) (int64, error)
}

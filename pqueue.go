package annoq

import (
	"sort"

	"github.com/annoq/jobqueue/job"
)

// pendingEntry is the in-memory wrapper held by the priority queue
// between enqueue and dispatch. It carries just enough to order
// dispatch; the authoritative record lives in the in-memory table.
type pendingEntry struct {
	id       job.ID
	priority int
	seq      uint64 // insertion order; insert keeps ties FIFO by position, not by reading seq
}

// priorityQueue is a sorted-array priority queue: strictly
// non-increasing priority order front-to-back, FIFO among ties.
// Insertion uses binary search; dispatch pops the front. This
// representation is adequate for the queue depths annoq targets
// (thousands, not millions of pending jobs).
type priorityQueue struct {
	entries []*pendingEntry
	nextSeq uint64
}

// insert places e in sorted position: after every existing entry whose
// priority is greater than or equal to e's, which keeps dispatch order
// strictly non-increasing by priority and FIFO among equal priorities.
func (q *priorityQueue) insert(id job.ID, priority int) {
	e := &pendingEntry{id: id, priority: priority, seq: q.nextSeq}
	q.nextSeq++
	idx := sort.Search(len(q.entries), func(i int) bool {
		return q.entries[i].priority < priority
	})
	q.entries = append(q.entries, nil)
	copy(q.entries[idx+1:], q.entries[idx:])
	q.entries[idx] = e
}

// popFront removes and returns the highest-priority, earliest-inserted
// entry, or nil if the queue is empty.
func (q *priorityQueue) popFront() *pendingEntry {
	if len(q.entries) == 0 {
		return nil
	}
	e := q.entries[0]
	q.entries = q.entries[1:]
	return e
}

func (q *priorityQueue) len() int {
	return len(q.entries)
}

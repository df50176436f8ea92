package annoq

import (
	"testing"

	"github.com/annoq/jobqueue/job"
)

func TestPriorityQueueOrdersByPriorityThenFIFO(t *testing.T) {
	var pq priorityQueue

	a, b, c, d := job.NewID(), job.NewID(), job.NewID(), job.NewID()
	pq.insert(a, 5)
	pq.insert(b, 5)
	pq.insert(c, 9)
	pq.insert(d, 1)

	want := []job.ID{c, a, b, d}
	for i, expected := range want {
		e := pq.popFront()
		if e == nil {
			t.Fatalf("pop %d: queue exhausted early", i)
		}
		if e.id != expected {
			t.Fatalf("pop %d: expected %s, got %s", i, expected, e.id)
		}
	}
	if pq.len() != 0 {
		t.Fatalf("expected empty queue, %d left", pq.len())
	}
}

func TestPriorityQueuePopFrontOnEmptyReturnsNil(t *testing.T) {
	var pq priorityQueue
	if e := pq.popFront(); e != nil {
		t.Fatalf("expected nil, got %+v", e)
	}
}

func TestPriorityQueueFIFOAcrossInterleavedInserts(t *testing.T) {
	var pq priorityQueue

	first, second, third := job.NewID(), job.NewID(), job.NewID()
	pq.insert(first, 5)
	pq.insert(third, 3)
	pq.insert(second, 5)

	if e := pq.popFront(); e.id != first {
		t.Fatalf("expected the earliest equal-priority insert first, got %s", e.id)
	}
	if e := pq.popFront(); e.id != second {
		t.Fatalf("expected the later equal-priority insert second, got %s", e.id)
	}
	if e := pq.popFront(); e.id != third {
		t.Fatalf("expected the lower priority last, got %s", e.id)
	}
}

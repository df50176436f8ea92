package annoq

import (
	"io"
	"log/slog"
	"testing"

	"github.com/annoq/jobqueue/job"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubscribersPanickingCallbackDoesNotDisruptOthers(t *testing.T) {
	subs := newSubscribers(discardLogger())
	id := job.NewID()

	unsub1 := subs.subscribe(id, func(Event) { panic("boom") })
	defer unsub1()

	var delivered int
	unsub2 := subs.subscribe(id, func(Event) { delivered++ })
	defer unsub2()

	rec := &job.Record{ID: id, Status: job.Running}
	subs.emit(Event{Record: rec})
	subs.emit(Event{Record: rec})

	if delivered != 2 {
		t.Fatalf("expected the healthy subscriber to receive both events, got %d", delivered)
	}
}

func TestSubscribersScopeDeliveryToJobID(t *testing.T) {
	subs := newSubscribers(discardLogger())
	mine, other := job.NewID(), job.NewID()

	var delivered int
	unsub := subs.subscribe(mine, func(Event) { delivered++ })
	defer unsub()

	subs.emit(Event{Record: &job.Record{ID: other, Status: job.Running}})
	if delivered != 0 {
		t.Fatalf("expected no delivery for another job's event, got %d", delivered)
	}

	subs.emit(Event{Record: &job.Record{ID: mine, Status: job.Running}})
	if delivered != 1 {
		t.Fatalf("expected exactly one delivery, got %d", delivered)
	}
}

func TestSubscribersUnsubscribeStopsDelivery(t *testing.T) {
	subs := newSubscribers(discardLogger())
	id := job.NewID()

	var delivered int
	unsub := subs.subscribe(id, func(Event) { delivered++ })

	evt := Event{Record: &job.Record{ID: id, Status: job.Running}}
	subs.emit(evt)
	unsub()
	subs.emit(evt)

	if delivered != 1 {
		t.Fatalf("expected delivery to stop after unsubscribe, got %d", delivered)
	}
}

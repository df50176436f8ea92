package annoq

import (
	"log/slog"
	"sync"

	"github.com/annoq/jobqueue/job"
)

// Event is a single progress notification delivered to StreamProgress
// subscribers: a snapshot of the record at the moment of the
// transition that produced it.
type Event struct {
	Record *job.Record
}

// subscription is one StreamProgress listener, optionally scoped to a
// single job id.
type subscription struct {
	id       uint64
	jobID    job.ID // zero value means "all jobs"
	callback func(Event)
}

// subscribers is the fan-out registry behind StreamProgress. Delivery
// is synchronous and best-effort: a panicking callback is recovered
// and logged so one broken subscriber cannot take down dispatch.
type subscribers struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]*subscription
	log    *slog.Logger
}

func newSubscribers(log *slog.Logger) *subscribers {
	return &subscribers{subs: make(map[uint64]*subscription), log: log}
}

// subscribe registers callback for events on jobID (or every job, if
// jobID is empty) and returns a function that removes it.
func (s *subscribers) subscribe(jobID job.ID, callback func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = &subscription{id: id, jobID: jobID, callback: callback}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// emit delivers evt to every subscriber whose scope matches the
// record's id.
func (s *subscribers) emit(evt Event) {
	s.mu.RLock()
	matching := make([]*subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		if sub.jobID == "" || sub.jobID == evt.Record.ID {
			matching = append(matching, sub)
		}
	}
	s.mu.RUnlock()

	for _, sub := range matching {
		s.safeDeliver(sub, evt)
	}
}

func (s *subscribers) safeDeliver(sub *subscription, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("subscriber callback panic recovered", "err", r)
		}
	}()
	sub.callback(evt)
}

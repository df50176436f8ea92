package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/annoq/jobqueue/job"
)

type entry struct {
	rec       *job.Record
	expiresAt time.Time // zero means no expiry
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Store is a volatile, mutex-protected annoq.Store.
type Store struct {
	mu           sync.RWMutex
	records      map[job.ID]*entry
	completedTTL time.Duration
}

// NewStore builds a Store whose terminal records lazily expire after
// completedTTL, mirroring the durable backend's TTL behavior.
func NewStore(completedTTL time.Duration) *Store {
	return &Store{
		records:      make(map[job.ID]*entry),
		completedTTL: completedTTL,
	}
}

func (s *Store) Get(_ context.Context, id job.ID) (*job.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	if e.expired(time.Now()) {
		delete(s.records, id)
		return nil, nil
	}
	return e.rec.Clone(), nil
}

func (s *Store) Set(_ context.Context, rec *job.Record) error {
	var expiresAt time.Time
	if rec.Status.IsTerminal() {
		expiresAt = time.Now().Add(s.completedTTL)
	}
	s.mu.Lock()
	s.records[rec.ID] = &entry{rec: rec.Clone(), expiresAt: expiresAt}
	s.mu.Unlock()
	return nil
}

func (s *Store) Delete(_ context.Context, id job.ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[id]
	delete(s.records, id)
	return ok, nil
}

func (s *Store) List(_ context.Context, filter job.Filter) ([]*job.Record, error) {
	s.mu.Lock()
	now := time.Now()
	matched := make([]*job.Record, 0, len(s.records))
	for id, e := range s.records {
		if e.expired(now) {
			delete(s.records, id)
			continue
		}
		if !matches(e.rec, filter) {
			continue
		}
		matched = append(matched, e.rec.Clone())
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []*job.Record{}, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (s *Store) Count(_ context.Context, filter job.Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var n int64
	for id, e := range s.records {
		if e.expired(now) {
			delete(s.records, id)
			continue
		}
		if matches(e.rec, filter) {
			n++
		}
	}
	return n, nil
}

func (s *Store) Cleanup(_ context.Context, maxAge time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var removed int64
	for id, e := range s.records {
		if !e.rec.Status.IsTerminal() {
			continue
		}
		ref := e.rec.CreatedAt
		if e.rec.CompletedAt != nil {
			ref = *e.rec.CompletedAt
		}
		if now.Sub(ref) > maxAge {
			delete(s.records, id)
			removed++
		}
	}
	return removed, nil
}

func matches(rec *job.Record, filter job.Filter) bool {
	if filter.Status != job.Unknown && rec.Status != filter.Status {
		return false
	}
	if filter.Type != "" && rec.Type != filter.Type {
		return false
	}
	return true
}

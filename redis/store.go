package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/annoq/jobqueue/job"
)

const (
	keyPrefix    = "anno:"
	byCreatedKey = keyPrefix + "jobs:by_created"
)

func jobKey(id job.ID) string {
	return keyPrefix + "job:" + string(id)
}

func statusKey(status job.Status) string {
	return keyPrefix + "jobs:status:" + status.String()
}

// Store is a Redis-backed implementation of annoq.Store.
//
// The provided *redis.Client must already be connected; Store performs
// no connection management of its own.
type Store struct {
	client       *goredis.Client
	completedTTL time.Duration
}

// NewStore builds a Store. completedTTL bounds how long a terminal
// record survives before Redis expires its key; non-terminal records
// carry no TTL.
func NewStore(client *goredis.Client, completedTTL time.Duration) *Store {
	return &Store{client: client, completedTTL: completedTTL}
}

// Ping probes the connection; it is used by the store factory's
// liveness check before committing to the durable backend.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Get returns the record stored under id, or (nil, nil) if the key is
// absent (never set, evicted by TTL, or removed by Cleanup).
func (s *Store) Get(ctx context.Context, id job.ID) (*job.Record, error) {
	body, err := s.client.Get(ctx, jobKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec job.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Set upserts rec and keeps the creation-ordered and status indices
// consistent, moving the previous status set entry (if any) to the
// record's current status.
func (s *Store) Set(ctx context.Context, rec *job.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	prev, err := s.Get(ctx, rec.ID)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	if rec.Status.IsTerminal() {
		pipe.Set(ctx, jobKey(rec.ID), body, s.completedTTL)
	} else {
		pipe.Set(ctx, jobKey(rec.ID), body, 0)
	}
	pipe.ZAdd(ctx, byCreatedKey, goredis.Z{
		Score:  float64(rec.CreatedAt.UnixMilli()),
		Member: string(rec.ID),
	})
	if prev != nil && prev.Status != rec.Status {
		pipe.SRem(ctx, statusKey(prev.Status), string(rec.ID))
	}
	pipe.SAdd(ctx, statusKey(rec.Status), string(rec.ID))
	_, err = pipe.Exec(ctx)
	return err
}

// Delete removes rec and its index entries, reporting whether it
// existed.
func (s *Store) Delete(ctx context.Context, id job.ID) (bool, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, nil
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, jobKey(id))
	pipe.ZRem(ctx, byCreatedKey, string(id))
	pipe.SRem(ctx, statusKey(rec.Status), string(id))
	_, err = pipe.Exec(ctx)
	return err == nil, err
}

// List returns records matching filter, newest first. A Type filter
// requires fetching each candidate record since no per-type index is
// maintained; this is adequate at the job volumes annoq targets but
// not meant for high-cardinality scans.
func (s *Store) List(ctx context.Context, filter job.Filter) ([]*job.Record, error) {
	ids, err := s.client.ZRevRange(ctx, byCreatedKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	var statusSet map[string]struct{}
	if filter.Status != job.Unknown {
		members, err := s.client.SMembers(ctx, statusKey(filter.Status)).Result()
		if err != nil {
			return nil, err
		}
		statusSet = make(map[string]struct{}, len(members))
		for _, m := range members {
			statusSet[m] = struct{}{}
		}
	}

	out := make([]*job.Record, 0, len(ids))
	skipped := 0
	for _, id := range ids {
		if statusSet != nil {
			if _, ok := statusSet[id]; !ok {
				continue
			}
		}
		rec, err := s.Get(ctx, job.ID(id))
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}
		if filter.Type != "" && rec.Type != filter.Type {
			continue
		}
		if filter.Offset > 0 && skipped < filter.Offset {
			skipped++
			continue
		}
		out = append(out, rec)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// Count returns the total number matching filter, ignoring paging.
func (s *Store) Count(ctx context.Context, filter job.Filter) (int64, error) {
	if filter.Type == "" {
		if filter.Status != job.Unknown {
			return s.client.SCard(ctx, statusKey(filter.Status)).Result()
		}
		return s.client.ZCard(ctx, byCreatedKey).Result()
	}
	all, err := s.List(ctx, job.Filter{Status: filter.Status, Type: filter.Type})
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

// Cleanup removes terminal records older than maxAge, measured from
// CompletedAt (falling back to CreatedAt if unset), reporting how many
// were removed. It is a belt-and-suspenders sweep alongside the
// per-key TTL: it catches anything a shortened maxAge should remove
// sooner than the TTL would. It also clears orphaned index entries: a
// status-set or by-created-index member whose own anno:job:{id} key
// has already expired via TTL, which would otherwise accumulate in
// both indices forever.
func (s *Store) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	var removed int64
	now := time.Now()
	for _, st := range []job.Status{job.Completed, job.Failed, job.Cancelled} {
		ids, err := s.client.SMembers(ctx, statusKey(st)).Result()
		if err != nil {
			return removed, err
		}
		for _, id := range ids {
			rec, err := s.Get(ctx, job.ID(id))
			if err != nil {
				return removed, err
			}
			if rec == nil {
				if err := s.removeOrphan(ctx, st, id); err != nil {
					return removed, err
				}
				removed++
				continue
			}
			ref := rec.CreatedAt
			if rec.CompletedAt != nil {
				ref = *rec.CompletedAt
			}
			if now.Sub(ref) <= maxAge {
				continue
			}
			ok, err := s.Delete(ctx, rec.ID)
			if err != nil {
				return removed, err
			}
			if ok {
				removed++
			}
		}
	}
	return removed, nil
}

// removeOrphan drops id from the status set st and the creation-order
// index, used when the payload key has already expired but the index
// entries referencing it were left behind.
func (s *Store) removeOrphan(ctx context.Context, st job.Status, id string) error {
	pipe := s.client.TxPipeline()
	pipe.SRem(ctx, statusKey(st), id)
	pipe.ZRem(ctx, byCreatedKey, id)
	_, err := pipe.Exec(ctx)
	return err
}

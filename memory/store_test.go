package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/annoq/jobqueue/job"
	"github.com/annoq/jobqueue/memory"
)

func TestStoreSetGetRoundTrip(t *testing.T) {
	store := memory.NewStore(time.Hour)
	ctx := context.Background()

	rec := &job.Record{ID: job.NewID(), Type: job.Extract, Status: job.Queued, CreatedAt: time.Now()}
	if err := store.Set(ctx, rec); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Type != job.Extract {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestStoreGetReturnsIndependentSnapshot(t *testing.T) {
	store := memory.NewStore(time.Hour)
	ctx := context.Background()

	rec := &job.Record{ID: job.NewID(), Type: job.Fetch, Status: job.Queued, CreatedAt: time.Now()}
	_ = store.Set(ctx, rec)

	got, _ := store.Get(ctx, rec.ID)
	got.Status = job.Failed

	again, _ := store.Get(ctx, rec.ID)
	if again.Status != job.Queued {
		t.Fatalf("mutating a returned snapshot leaked into storage: %v", again.Status)
	}
}

func TestStoreDeleteReportsExistence(t *testing.T) {
	store := memory.NewStore(time.Hour)
	ctx := context.Background()

	ok, err := store.Delete(ctx, job.ID("nope"))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected false for a missing id")
	}

	rec := &job.Record{ID: job.NewID(), Type: job.Fetch, Status: job.Queued, CreatedAt: time.Now()}
	_ = store.Set(ctx, rec)
	ok, err = store.Delete(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected true for an existing id")
	}
}

func TestStoreListFiltersAndPages(t *testing.T) {
	store := memory.NewStore(time.Hour)
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 3; i++ {
		rec := &job.Record{
			ID:        job.NewID(),
			Type:      job.Fetch,
			Status:    job.Queued,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		_ = store.Set(ctx, rec)
	}
	rec := &job.Record{ID: job.NewID(), Type: job.Crawl, Status: job.Completed, CreatedAt: base.Add(10 * time.Second)}
	_ = store.Set(ctx, rec)

	queued, err := store.List(ctx, job.Filter{Status: job.Queued})
	if err != nil {
		t.Fatal(err)
	}
	if len(queued) != 3 {
		t.Fatalf("expected 3 queued, got %d", len(queued))
	}
	for i := 1; i < len(queued); i++ {
		if queued[i-1].CreatedAt.Before(queued[i].CreatedAt) {
			t.Fatal("expected descending CreatedAt order")
		}
	}

	paged, err := store.List(ctx, job.Filter{Status: job.Queued, Limit: 1, Offset: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(paged) != 1 {
		t.Fatalf("expected 1 page entry, got %d", len(paged))
	}
}

func TestStoreCleanupRemovesAgedTerminalOnly(t *testing.T) {
	store := memory.NewStore(time.Hour)
	ctx := context.Background()

	old := time.Now().Add(-2 * time.Hour)
	terminal := &job.Record{ID: job.NewID(), Type: job.Fetch, Status: job.Completed, CreatedAt: old, CompletedAt: &old}
	active := &job.Record{ID: job.NewID(), Type: job.Fetch, Status: job.Running, CreatedAt: old}
	_ = store.Set(ctx, terminal)
	_ = store.Set(ctx, active)

	removed, err := store.Cleanup(ctx, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	if got, _ := store.Get(ctx, terminal.ID); got != nil {
		t.Fatal("expected terminal record to be gone")
	}
	if got, _ := store.Get(ctx, active.ID); got == nil {
		t.Fatal("expected non-terminal record to survive regardless of age")
	}
}

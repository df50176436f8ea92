// Command annoqd wires a Queue to its store backend and a placeholder
// handler set. It is a minimal composition root for local exercise of
// the queue package; the HTTP surface, real extraction handlers, and
// configuration loading are external concerns left to the host
// application.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	annoq "github.com/annoq/jobqueue"
	"github.com/annoq/jobqueue/job"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := annoq.Config{
		Redis:       annoq.RedisConfig{Enabled: os.Getenv("ANNOQ_REDIS_URL") != "", URL: os.Getenv("ANNOQ_REDIS_URL")},
		Concurrency: 4,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := annoq.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error("failed to build store", "err", err)
		os.Exit(1)
	}

	q := annoq.NewQueue(cfg, store, log, nil)
	if err := q.RegisterHandler(job.Fetch, echoHandler); err != nil {
		log.Error("failed to register handler", "err", err)
		os.Exit(1)
	}

	q.Start()
	log.Info("annoqd started")

	cleaner := annoq.NewCleanupWorker(store, time.Hour, 24*time.Hour, log)
	if err := cleaner.Start(ctx); err != nil {
		log.Error("failed to start cleanup worker", "err", err)
	}

	<-ctx.Done()
	log.Info("annoqd shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := q.Stop(shutdownCtx); err != nil {
		log.Error("queue shutdown error", "err", err)
	}
	if err := cleaner.Stop(10 * time.Second); err != nil && !errors.Is(err, annoq.ErrDoubleStopped) {
		log.Error("cleanup worker shutdown error", "err", err)
	}
}

func echoHandler(ctx context.Context, record *job.Record, report annoq.ProgressFunc) (any, error) {
	report(100, "done")
	return record.Payload, nil
}

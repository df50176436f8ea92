package annoq

import (
	"context"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/annoq/jobqueue/memory"
	annoqredis "github.com/annoq/jobqueue/redis"
)

// NewStore builds the Store backend selected by cfg: the durable
// Redis store when cfg.Redis.Enabled and reachable, the volatile
// in-memory store otherwise. A malformed URL or a failed liveness
// probe is logged and falls back to memory rather than failing
// startup outright.
func NewStore(ctx context.Context, cfg Config, log *slog.Logger) (Store, error) {
	cfg = cfg.normalize()
	if log == nil {
		log = slog.Default()
	}
	if !cfg.Redis.Enabled {
		log.Info("store: using volatile in-memory backend")
		return memory.NewStore(cfg.CompletedTTL), nil
	}

	opts, err := goredis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Warn("store: invalid redis url, falling back to memory", "err", err)
		return memory.NewStore(cfg.CompletedTTL), nil
	}

	client := goredis.NewClient(opts)
	store := annoqredis.NewStore(client, cfg.CompletedTTL)

	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(probeCtx); err != nil {
		log.Warn("store: redis unreachable, falling back to memory", "err", err)
		return memory.NewStore(cfg.CompletedTTL), nil
	}

	log.Info("store: using durable redis backend")
	return store, nil
}

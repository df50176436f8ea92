package annoq

import "time"

// RedisConfig selects and configures the durable store backend.
type RedisConfig struct {
	// Enabled selects the durable (Redis) store over the volatile
	// (in-memory) one, subject to a successful liveness probe.
	Enabled bool
	// URL is the connection target, e.g. "redis://localhost:6379/0".
	URL string
}

// Config bundles the recognized configuration keys consumed by the
// store factory and the Queue constructor. Config loading itself
// (env vars, files, flags) is an external concern; callers populate
// this struct however they see fit and pass it in.
type Config struct {
	Redis RedisConfig

	// Concurrency bounds how many handlers may run at once. Default 4.
	Concurrency int

	// CompletedTTL is the durable store's TTL for terminal records.
	// Default 24h.
	CompletedTTL time.Duration

	// MaxCompletedJobs bounds how many terminal records are retained in
	// the in-memory overlay before eviction. Default 100.
	MaxCompletedJobs int

	// TickInterval is the scheduler's dispatch cadence. Default 100ms.
	TickInterval time.Duration

	// WebhookTimeout is the connect+read bound for a single webhook
	// delivery attempt. Default 10s. NewStore and NewQueue do not read
	// it: a Queue's webhook sender is passed to NewQueue ready-made.
	WebhookTimeout time.Duration

	// WebhookConcurrency bounds the background webhook delivery pool.
	// Default 4.
	WebhookConcurrency int

	// UserAgent identifies this service in outbound webhook requests.
	// Like WebhookTimeout, it is not read by NewStore or NewQueue.
	UserAgent string
}

const (
	defaultConcurrency        = 4
	defaultCompletedTTL       = 24 * time.Hour
	defaultMaxCompletedJobs   = 100
	defaultTickInterval       = 100 * time.Millisecond
	defaultWebhookTimeout     = 10 * time.Second
	defaultWebhookConcurrency = 4
	defaultUserAgent          = "annoq-jobqueue/1.0"
)

// normalize returns a copy of c with zero-valued fields replaced by
// their documented defaults.
func (c Config) normalize() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}
	if c.CompletedTTL <= 0 {
		c.CompletedTTL = defaultCompletedTTL
	}
	if c.MaxCompletedJobs <= 0 {
		c.MaxCompletedJobs = defaultMaxCompletedJobs
	}
	if c.TickInterval <= 0 {
		c.TickInterval = defaultTickInterval
	}
	if c.WebhookTimeout <= 0 {
		c.WebhookTimeout = defaultWebhookTimeout
	}
	if c.WebhookConcurrency <= 0 {
		c.WebhookConcurrency = defaultWebhookConcurrency
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	return c
}

// Package memory implements annoq.Store entirely in process memory.
//
// It is the fallback backend when no Redis is configured, or Redis is
// unreachable at startup: a mutex-protected map with the same
// filtering and TTL-at-read-time semantics as the durable backend, so
// Queue's behavior is identical regardless of which Store it holds.
// Nothing here survives a process restart.
package memory

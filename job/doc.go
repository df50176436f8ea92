// Package job defines the durable unit of state managed by annoq: a
// Record, its lifecycle Status, its Type discriminator and its Options.
//
// Unlike a transport-only message, a Record carries both the submitter's
// payload and the queue's own delivery state (status, progress, attempts,
// timestamps). Record instances returned by a Store or Queue are
// snapshots; mutating them does not change queue state — transitions are
// only ever performed by the Queue itself.
package job

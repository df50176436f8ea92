// Package redis implements annoq.Store against a Redis backend.
//
// Each record is stored as a JSON blob under a per-job string key,
// with a TTL applied once the job reaches a terminal status. Two
// secondary indices are maintained alongside it: a sorted set ordering
// all job ids by creation time, and one set per status holding the
// ids currently in that status. Every Set call keeps both in sync,
// removing the previous status entry when a job transitions.
package redis

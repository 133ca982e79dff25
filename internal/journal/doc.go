// Package journal provides SQLite-backed durable storage for accepted posts.
//
// The journal is an append-only log. Each row is a post the timeline store
// already accepted, with the timestamp the store assigned. Replaying the log
// in order rebuilds the store snapshot that produced it.
//
// # Idempotency
//
// UNIQUE(author, id) with ON CONFLICT DO NOTHING makes Append safe to
// retry: a second append of the same post is a no-op and never replaces the
// first row, mirroring the store's insert-if-absent rule.
//
// # Ordering
//
// All reads use ORDER BY seq ASC, id ASC so replays are deterministic.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - single open connection (SQLite has one writer)
package journal

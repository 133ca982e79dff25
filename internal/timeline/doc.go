// Package timeline implements the per-author post store.
//
// Every participant owns one Timeline: an append-only set of Posts keyed by
// PostID. The Store maps PeerID to Timeline and is an immutable value. Each
// successful submission returns a new Store; the previous snapshot stays
// valid and unchanged. Untouched timelines are shared between snapshots and
// only the timeline receiving a post is cloned.
//
// RECONCILIATION RULE:
//
// Submit(target, post) applies, in order:
//
//  1. Authorship, fail-closed. A post whose claimed Author differs from
//     target is rejected with an AUTHORSHIP_MISMATCH error. The store never
//     relabels a post's author to make it fit the namespace it was filed
//     under, so the check is the only way content enters a timeline.
//  2. Insert-if-absent. A post whose ID already exists in the target
//     timeline is rejected with a DUPLICATE_POST error and the original
//     content and timestamp are kept. Callers replaying a feed may treat
//     this as a successful no-op.
//  3. Timestamp stamping. The stored post's Timestamp is the store clock at
//     insertion, whatever the caller supplied.
//
// A rejected submission returns the receiver unchanged. There is no partial
// state.
//
// CONCURRENCY:
//
// Store values are safe for any number of concurrent readers. Writers go
// through a Dispatcher, which serializes "read snapshot, validate, publish"
// with compare-and-swap and can shard peers across independent snapshots.
package timeline

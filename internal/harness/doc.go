// Package harness runs conformance scenarios against the timeline store.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: own_post_accepted
//	description: "An author can post to their own timeline"
//	peers: [alice, bob]
//	steps:
//	  - submit: { target: alice, author: alice, content: "hi", id: 1 }
//	    expect: ok
//	  - submit: { target: bob, author: alice, content: "hi", id: 2 }
//	    expect: authorship_mismatch
//	assertions:
//	  - type: timeline_count
//	    peer: alice
//	    count: 1
//	  - type: absent
//	    peer: bob
//
// Peers are named; each name maps to a fixed sr25519 identity, so traces
// never depend on freshly generated keys. Post ids are small integers
// mapped onto fixed UUIDs; a step without an id uses its own 1-based index.
//
// # Outcomes
//
//   - ok: the post was accepted and stamped
//   - authorship_mismatch: the post's author is not the target
//   - duplicate_post: the target already holds a post with that id
//
// # Assertion Types
//
//   - timeline_count: peer's timeline holds exactly count posts
//   - content: post in peer's timeline has the given content
//   - absent: peer has no timeline, or with post set, lacks that post
//   - stamped: post carries the time it was accepted, not the time the
//     author claimed
//
// # Deterministic Execution
//
// Each scenario gets a fresh in-memory journal and a manual clock that
// advances one second before every step. Accepted posts are journaled and
// the journal is replayed at the end; a replay that differs from the live
// snapshot fails the scenario. Traces are canonical JSON and are compared
// against golden files with goldie:
//
//	go test ./internal/harness -update
package harness

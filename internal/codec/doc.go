// Package codec is the serialization collaborator used to move posts and
// feeds between peers and onto disk.
//
// Pack and Unpack round-trip any JSON-encodable value through a compact
// byte payload: a four byte magic, then a zstd frame holding the JSON
// document. Nothing else about the layout is promised.
//
// MarshalCanonical produces deterministic JSON for signing. Keys are sorted
// by UTF-16 code units, strings are NFC normalized and HTML characters are
// not escaped, so a signer and a verifier always hash the same bytes.
package codec

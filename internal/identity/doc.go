// Package identity supplies peer identities for peerline.
//
// A PeerID is the base58 encoding of a 32-byte sr25519 public key. PeerIDs
// are plain comparable values and are safe to use as map keys. An Identity
// holds the matching secret key and can sign payloads; Verify checks a
// signature against the public key recovered from a PeerID, which is how a
// remote submission proves that its author controls the claimed peer id.
package identity

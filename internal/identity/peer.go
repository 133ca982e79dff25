package identity

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// PublicKeySize is the length of an sr25519 public key in bytes.
const PublicKeySize = 32

// ErrInvalidPeerID is returned when a string is not a well-formed PeerID.
var ErrInvalidPeerID = errors.New("invalid peer id")

// PeerID identifies a participant. The zero value identifies nobody.
type PeerID string

// String returns the base58 text form.
func (p PeerID) String() string {
	return string(p)
}

// IsZero reports whether p is the empty PeerID.
func (p PeerID) IsZero() bool {
	return p == ""
}

// Short returns an abbreviated form for logs and terminal output.
func (p PeerID) Short() string {
	if len(p) <= 12 {
		return string(p)
	}
	return string(p[:6]) + "…" + string(p[len(p)-4:])
}

// ParsePeerID validates s and returns it as a PeerID.
func ParsePeerID(s string) (PeerID, error) {
	if _, err := publicKeyBytes(PeerID(s)); err != nil {
		return "", err
	}
	return PeerID(s), nil
}

func peerFromPublicKey(raw [PublicKeySize]byte) PeerID {
	return PeerID(base58.Encode(raw[:]))
}

func publicKeyBytes(p PeerID) ([PublicKeySize]byte, error) {
	var raw [PublicKeySize]byte
	if p.IsZero() {
		return raw, fmt.Errorf("%w: empty", ErrInvalidPeerID)
	}
	decoded, err := base58.Decode(string(p))
	if err != nil {
		return raw, fmt.Errorf("%w: %v", ErrInvalidPeerID, err)
	}
	if len(decoded) != PublicKeySize {
		return raw, fmt.Errorf("%w: key length %d, want %d", ErrInvalidPeerID, len(decoded), PublicKeySize)
	}
	copy(raw[:], decoded)
	return raw, nil
}

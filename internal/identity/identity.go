package identity

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ChainSafe/go-schnorrkel"
)

// SigningContext domain-separates peerline signatures from other sr25519 uses.
const SigningContext = "peerline"

// SignatureSize is the length of an encoded sr25519 signature.
const SignatureSize = 64

// ErrBadSignature is returned by Verify when a signature does not match.
var ErrBadSignature = errors.New("signature verification failed")

// Identity is a local peer's key pair.
type Identity struct {
	seed   [32]byte
	secret *schnorrkel.SecretKey
	peer   PeerID
}

// New creates an identity from a fresh random seed.
func New() (*Identity, error) {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("generate seed: %w", err)
	}
	return fromSeed(seed)
}

// FromSeedHex restores an identity from a hex encoded 32-byte seed.
// A leading 0x is accepted.
func FromSeedHex(s string) (*Identity, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("invalid seed length: expected 32 bytes, got %d", len(raw))
	}
	var seed [32]byte
	copy(seed[:], raw)
	return fromSeed(seed)
}

// MustNew is like New but panics on error.
// Use only in tests.
func MustNew() *Identity {
	id, err := New()
	if err != nil {
		panic(err)
	}
	return id
}

func fromSeed(seed [32]byte) (*Identity, error) {
	mini, err := schnorrkel.NewMiniSecretKeyFromRaw(seed)
	if err != nil {
		return nil, fmt.Errorf("create mini secret key: %w", err)
	}
	secret := mini.ExpandEd25519()
	public, err := secret.Public()
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}
	return &Identity{
		seed:   seed,
		secret: secret,
		peer:   peerFromPublicKey(public.Encode()),
	}, nil
}

// Peer returns the PeerID owned by this identity.
func (id *Identity) Peer() PeerID {
	return id.peer
}

// SeedHex returns the seed in hex so the identity can be persisted.
func (id *Identity) SeedHex() string {
	return hex.EncodeToString(id.seed[:])
}

// Sign signs msg under SigningContext.
func (id *Identity) Sign(msg []byte) ([]byte, error) {
	transcript := schnorrkel.NewSigningContext([]byte(SigningContext), msg)
	sig, err := id.secret.Sign(transcript)
	if err != nil {
		return nil, fmt.Errorf("sign message: %w", err)
	}
	encoded := sig.Encode()
	return encoded[:], nil
}

// Verify checks that sig is a signature over msg by the key behind peer.
func Verify(peer PeerID, msg, sig []byte) error {
	pkRaw, err := publicKeyBytes(peer)
	if err != nil {
		return err
	}
	if len(sig) != SignatureSize {
		return fmt.Errorf("%w: signature length %d", ErrBadSignature, len(sig))
	}

	var pk schnorrkel.PublicKey
	if err := pk.Decode(pkRaw); err != nil {
		return fmt.Errorf("decode public key: %w", err)
	}

	var sigRaw [SignatureSize]byte
	copy(sigRaw[:], sig)
	var s schnorrkel.Signature
	if err := s.Decode(sigRaw); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	transcript := schnorrkel.NewSigningContext([]byte(SigningContext), msg)
	ok, err := pk.Verify(&s, transcript)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if !ok {
		return ErrBadSignature
	}
	return nil
}

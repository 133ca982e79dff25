package feed

import (
	"errors"
	"fmt"

	"github.com/roach88/peerline/internal/codec"
	"github.com/roach88/peerline/internal/identity"
	"github.com/roach88/peerline/internal/timeline"
)

// PayloadKind domain-separates post signatures.
const PayloadKind = "peerline/post/v1"

// ErrNotOwner is returned when an identity is asked to seal a post it does
// not author.
var ErrNotOwner = errors.New("identity does not own post")

// Envelope is a post together with its author's signature.
type Envelope struct {
	Post      timeline.Post `json:"post"`
	Signature []byte        `json:"signature"`
}

// SigningPayload returns the bytes an author signs for post. The timestamp
// is left out: receiving stores stamp their own.
func SigningPayload(post timeline.Post) ([]byte, error) {
	payload, err := codec.MarshalCanonical(map[string]any{
		"kind":    PayloadKind,
		"id":      post.ID.String(),
		"author":  post.Author.String(),
		"content": post.Content,
	})
	if err != nil {
		return nil, fmt.Errorf("signing payload: %w", err)
	}
	return payload, nil
}

// Seal signs post with id. The post must claim id's peer as its author.
func Seal(id *identity.Identity, post timeline.Post) (Envelope, error) {
	if post.Author != id.Peer() {
		return Envelope{}, fmt.Errorf("seal post %s: %w", post.ID, ErrNotOwner)
	}
	payload, err := SigningPayload(post)
	if err != nil {
		return Envelope{}, err
	}
	sig, err := id.Sign(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("seal post %s: %w", post.ID, err)
	}
	return Envelope{Post: post, Signature: sig}, nil
}

// Verify checks the signature against the post's claimed author.
func (e Envelope) Verify() error {
	payload, err := SigningPayload(e.Post)
	if err != nil {
		return err
	}
	if err := identity.Verify(e.Post.Author, payload, e.Signature); err != nil {
		return fmt.Errorf("verify post %s: %w", e.Post.ID, err)
	}
	return nil
}

// Package feed carries signed posts between peers.
//
// A Feed is one peer's outgoing batch: the owner's posts, each sealed in an
// Envelope signed by the owner's identity. Feeds travel as codec.Pack
// payloads. Decode validates the unpacked document against an embedded JSON
// Schema before trusting any field, and Ingest verifies every signature
// before a post reaches the timeline store.
package feed

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/roach88/peerline/internal/codec"
	"github.com/roach88/peerline/internal/identity"
	"github.com/roach88/peerline/internal/timeline"
)

// Version is the feed format version written by Encode.
const Version = 1

//go:embed feed.schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("feed.schema.json", schemaJSON)

// ErrInvalidFeed wraps schema and decoding failures.
var ErrInvalidFeed = errors.New("invalid feed")

// Feed is a batch of sealed posts published by Owner.
type Feed struct {
	Version   int             `json:"version"`
	Owner     identity.PeerID `json:"owner"`
	Envelopes []Envelope      `json:"envelopes"`
}

// Export seals every post of tl. Only the timeline's author can export it.
func Export(id *identity.Identity, tl *timeline.Timeline) (Feed, error) {
	if tl.Author() != id.Peer() {
		return Feed{}, fmt.Errorf("export timeline %s: %w", tl.Author().Short(), ErrNotOwner)
	}
	posts := tl.Posts()
	f := Feed{Version: Version, Owner: id.Peer(), Envelopes: make([]Envelope, 0, len(posts))}
	for _, p := range posts {
		env, err := Seal(id, p)
		if err != nil {
			return Feed{}, err
		}
		f.Envelopes = append(f.Envelopes, env)
	}
	return f, nil
}

// Encode packs f for transport.
func Encode(f Feed) ([]byte, error) {
	if f.Version == 0 {
		f.Version = Version
	}
	if f.Envelopes == nil {
		f.Envelopes = []Envelope{}
	}
	data, err := codec.Pack(f)
	if err != nil {
		return nil, fmt.Errorf("encode feed: %w", err)
	}
	return data, nil
}

// Decode unpacks and validates a feed produced by Encode.
func Decode(data []byte) (Feed, error) {
	raw, err := codec.UnpackRaw(data)
	if err != nil {
		return Feed{}, fmt.Errorf("%w: %v", ErrInvalidFeed, err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Feed{}, fmt.Errorf("%w: %v", ErrInvalidFeed, err)
	}
	if err := schema.Validate(doc); err != nil {
		return Feed{}, fmt.Errorf("%w: %v", ErrInvalidFeed, err)
	}

	var f Feed
	if err := json.Unmarshal(raw, &f); err != nil {
		return Feed{}, fmt.Errorf("%w: %v", ErrInvalidFeed, err)
	}
	if _, err := identity.ParsePeerID(f.Owner.String()); err != nil {
		return Feed{}, fmt.Errorf("%w: owner: %v", ErrInvalidFeed, err)
	}
	return f, nil
}

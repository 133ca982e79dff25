package timeline

import (
	"time"

	"github.com/roach88/peerline/internal/identity"
)

// Action is a state transition on a Store.
type Action interface {
	// Target is the peer namespace the action touches. Dispatchers route on it.
	Target() identity.PeerID

	// Apply returns the next store. On error it returns s unchanged.
	Apply(now time.Time, s *Store) (*Store, error)
}

// CreatePost files Post under Peer.
type CreatePost struct {
	Peer identity.PeerID
	Post Post
}

// Target implements Action.
func (a CreatePost) Target() identity.PeerID {
	return a.Peer
}

// Apply implements Action.
func (a CreatePost) Apply(now time.Time, s *Store) (*Store, error) {
	return s.SubmitAt(now, a.Peer, a.Post)
}

// Reduce applies a to s using the current time. A rejected action yields s
// itself, so callers that only care about the resulting state may ignore the
// error.
func Reduce(s *Store, a Action) (*Store, error) {
	return a.Apply(time.Now().UTC(), s)
}

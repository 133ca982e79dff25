package harness

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/peerline/internal/identity"
)

// PeerIdentity returns the fixed identity scenarios use for name.
func PeerIdentity(name string) (*identity.Identity, error) {
	sum := sha256.Sum256([]byte("peerline/harness/" + name))
	id, err := identity.FromSeedHex(hex.EncodeToString(sum[:]))
	if err != nil {
		return nil, fmt.Errorf("peer %q: %w", name, err)
	}
	return id, nil
}

// peerSet maps scenario names to peer ids and back.
type peerSet struct {
	ids   map[string]identity.PeerID
	names map[identity.PeerID]string
}

func newPeerSet(names []string) (*peerSet, error) {
	ps := &peerSet{
		ids:   make(map[string]identity.PeerID, len(names)),
		names: make(map[identity.PeerID]string, len(names)),
	}
	for _, name := range names {
		id, err := PeerIdentity(name)
		if err != nil {
			return nil, err
		}
		ps.ids[name] = id.Peer()
		ps.names[id.Peer()] = name
	}
	return ps, nil
}

// name returns the scenario name for peer, or the peer id itself when the
// scenario never declared it.
func (ps *peerSet) name(peer identity.PeerID) string {
	if n, ok := ps.names[peer]; ok {
		return n
	}
	return peer.String()
}

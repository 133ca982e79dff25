package timeline

import (
	"bytes"
	"sort"
	"time"

	"github.com/roach88/peerline/internal/identity"
)

// Timeline is one author's append-only set of posts.
// Every post it holds has Author equal to the timeline's author.
type Timeline struct {
	author  identity.PeerID
	history map[PostID]Post
}

func newTimeline(author identity.PeerID) *Timeline {
	return &Timeline{author: author, history: map[PostID]Post{}}
}

// Author returns the peer that owns this timeline.
func (t *Timeline) Author() identity.PeerID {
	return t.author
}

// Len returns the number of posts.
func (t *Timeline) Len() int {
	return len(t.history)
}

// Has reports whether id is recorded.
func (t *Timeline) Has(id PostID) bool {
	_, ok := t.history[id]
	return ok
}

// Post returns the stored post for id.
func (t *Timeline) Post(id PostID) (Post, bool) {
	p, ok := t.history[id]
	return p, ok
}

// Posts returns every post, ordered by timestamp then ID so repeated calls
// see the same sequence. The order says nothing about causality.
func (t *Timeline) Posts() []Post {
	posts := make([]Post, 0, len(t.history))
	for _, p := range t.history {
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].Timestamp.Equal(posts[j].Timestamp) {
			return posts[i].Timestamp.Before(posts[j].Timestamp)
		}
		return bytes.Compare(posts[i].ID[:], posts[j].ID[:]) < 0
	})
	return posts
}

// with returns a copy of t holding post in addition to its history.
func (t *Timeline) with(post Post) *Timeline {
	history := make(map[PostID]Post, len(t.history)+1)
	for id, p := range t.history {
		history[id] = p
	}
	history[post.ID] = post
	return &Timeline{author: t.author, history: history}
}

// Store is an immutable snapshot of every timeline. The zero value and a nil
// *Store are both empty stores.
type Store struct {
	timelines map[identity.PeerID]*Timeline
}

// New returns an empty store.
func New() *Store {
	return &Store{timelines: map[identity.PeerID]*Timeline{}}
}

// Timeline returns the timeline for peer, if any post was ever recorded.
func (s *Store) Timeline(peer identity.PeerID) (*Timeline, bool) {
	if s == nil {
		return nil, false
	}
	t, ok := s.timelines[peer]
	return t, ok
}

// Len returns the number of timelines.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.timelines)
}

// Peers returns the peers that own a timeline, sorted.
func (s *Store) Peers() []identity.PeerID {
	if s == nil {
		return []identity.PeerID{}
	}
	peers := make([]identity.PeerID, 0, len(s.timelines))
	for p := range s.timelines {
		peers = append(peers, p)
	}
	sort.Slice(peers, func(i, j int) bool { return peers[i] < peers[j] })
	return peers
}

// Submit records post under target using the current time.
// See SubmitAt.
func (s *Store) Submit(target identity.PeerID, post Post) (*Store, error) {
	return s.SubmitAt(time.Now().UTC(), target, post)
}

// SubmitAt records post under target and stamps it with now.
//
// The submission is rejected, and s returned unchanged, when post.Author is
// not target or when target's timeline already holds post.ID. On success the
// returned store shares every timeline except target's with s.
func (s *Store) SubmitAt(now time.Time, target identity.PeerID, post Post) (*Store, error) {
	if err := s.check(target, post); err != nil {
		return s, err
	}
	post.Timestamp = now
	return s.insert(target, post), nil
}

// Restore records a post loaded from durable storage. It enforces the same
// authorship and duplicate rules as Submit but keeps post.Timestamp, which
// was stamped when the post was first accepted.
func (s *Store) Restore(post Post) (*Store, error) {
	if err := s.check(post.Author, post); err != nil {
		return s, err
	}
	return s.insert(post.Author, post), nil
}

func (s *Store) check(target identity.PeerID, post Post) error {
	if post.Author != target {
		return newAuthorshipError(target, post)
	}
	if t, ok := s.Timeline(target); ok && t.Has(post.ID) {
		return newDuplicateError(target, post)
	}
	return nil
}

func (s *Store) insert(target identity.PeerID, post Post) *Store {
	current, ok := s.Timeline(target)
	if !ok {
		current = newTimeline(target)
	}

	next := make(map[identity.PeerID]*Timeline, s.Len()+1)
	if s != nil {
		for p, t := range s.timelines {
			next[p] = t
		}
	}
	next[target] = current.with(post)
	return &Store{timelines: next}
}

// merge returns a store holding the timelines of every part. Parts must not
// share peers. Timelines are shared, not copied.
func merge(parts ...*Store) *Store {
	size := 0
	for _, p := range parts {
		size += p.Len()
	}
	out := &Store{timelines: make(map[identity.PeerID]*Timeline, size)}
	for _, p := range parts {
		if p == nil {
			continue
		}
		for peer, t := range p.timelines {
			out.timelines[peer] = t
		}
	}
	return out
}

package timeline

import (
	"sync/atomic"

	"github.com/OneOfOne/xxhash"
	"go.uber.org/zap"

	"github.com/roach88/peerline/internal/identity"
)

// MaxShards bounds WithShards.
const MaxShards = 256

// Dispatcher owns the current snapshot and is the only writer.
//
// Each shard holds the snapshot for the peers routed to it. Actions are
// applied with a compare-and-swap loop, so "load snapshot, validate, publish"
// is atomic per shard and a rejected action publishes nothing. With one shard
// (the default) every submission serializes through a single root snapshot.
type Dispatcher struct {
	shards []atomic.Pointer[Store]
	clock  Clock
	logger *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithShards routes peers over n independent snapshots. Values outside
// [1, MaxShards] are clamped.
func WithShards(n int) Option {
	return func(d *Dispatcher) {
		if n < 1 {
			n = 1
		}
		if n > MaxShards {
			n = MaxShards
		}
		d.shards = make([]atomic.Pointer[Store], n)
	}
}

// WithClock sets the clock used to stamp accepted posts.
func WithClock(c Clock) Option {
	return func(d *Dispatcher) { d.clock = c }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// NewDispatcher creates a dispatcher holding an empty store.
func NewDispatcher(opts ...Option) *Dispatcher {
	return NewDispatcherFrom(New(), opts...)
}

// NewDispatcherFrom creates a dispatcher whose initial state is initial,
// typically a store replayed from a journal.
func NewDispatcherFrom(initial *Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		shards: make([]atomic.Pointer[Store], 1),
		clock:  SystemClock{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	parts := make([]map[identity.PeerID]*Timeline, len(d.shards))
	for i := range parts {
		parts[i] = map[identity.PeerID]*Timeline{}
	}
	if initial != nil {
		for peer, t := range initial.timelines {
			parts[d.shardFor(peer)][peer] = t
		}
	}
	for i := range d.shards {
		d.shards[i].Store(&Store{timelines: parts[i]})
	}
	return d
}

// Shards returns the number of shards.
func (d *Dispatcher) Shards() int {
	return len(d.shards)
}

func (d *Dispatcher) shardFor(peer identity.PeerID) int {
	if len(d.shards) == 1 {
		return 0
	}
	return int(xxhash.ChecksumString64(string(peer)) % uint64(len(d.shards)))
}

// Dispatch applies a and returns the resulting snapshot of a's shard.
func (d *Dispatcher) Dispatch(a Action) (*Store, error) {
	target := a.Target()
	shard := &d.shards[d.shardFor(target)]

	for {
		current := shard.Load()
		next, err := a.Apply(d.clock.Now(), current)
		if err != nil {
			d.logRejection(target, err)
			return current, err
		}
		if shard.CompareAndSwap(current, next) {
			return next, nil
		}
	}
}

// Submit files post under target and returns the post as stored, with the
// timestamp the store assigned.
func (d *Dispatcher) Submit(target identity.PeerID, post Post) (Post, error) {
	s, err := d.Dispatch(CreatePost{Peer: target, Post: post})
	if err != nil {
		return Post{}, err
	}
	t, _ := s.Timeline(target)
	stored, _ := t.Post(post.ID)

	d.logger.Debug("post accepted",
		zap.String("peer", target.String()),
		zap.String("post_id", post.ID.String()),
	)
	return stored, nil
}

// Timeline returns peer's timeline from the current snapshot of its shard.
func (d *Dispatcher) Timeline(peer identity.PeerID) (*Timeline, bool) {
	return d.shards[d.shardFor(peer)].Load().Timeline(peer)
}

// Snapshot returns the whole current store. With several shards the result
// merges per-shard snapshots taken one after another; each timeline in it
// is a consistent snapshot of that timeline.
func (d *Dispatcher) Snapshot() *Store {
	if len(d.shards) == 1 {
		return d.shards[0].Load()
	}
	parts := make([]*Store, len(d.shards))
	for i := range d.shards {
		parts[i] = d.shards[i].Load()
	}
	return merge(parts...)
}

func (d *Dispatcher) logRejection(target identity.PeerID, err error) {
	fields := []zap.Field{zap.String("peer", target.String()), zap.Error(err)}
	switch {
	case IsAuthorshipMismatch(err):
		d.logger.Warn("post rejected", fields...)
	default:
		d.logger.Debug("post rejected", fields...)
	}
}

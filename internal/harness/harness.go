package harness

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/peerline/internal/journal"
	"github.com/roach88/peerline/internal/testutil"
	"github.com/roach88/peerline/internal/timeline"
)

// StepInterval is how far the clock moves before each step.
const StepInterval = time.Second

// Option configures a run.
type Option func(*Harness)

// WithLogger sets the logger handed to the dispatcher and recorder.
func WithLogger(l *zap.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// WithShards runs the scenario on a dispatcher with n shards.
func WithShards(n int) Option {
	return func(h *Harness) { h.shards = n }
}

// Harness executes a single scenario.
type Harness struct {
	clock    *testutil.ManualClock
	journal  *journal.Journal
	recorder *journal.Recorder
	peers    *peerSet
	logger   *zap.Logger
	shards   int

	// submittedAt holds the clock reading of every accepted step, keyed by
	// target and post number.
	submittedAt map[postKey]time.Time
}

type postKey struct {
	peer string
	post uint64
}

// Run executes scenario against a fresh in-memory journal and dispatcher.
// The returned error covers infrastructure failures only; failed steps and
// assertions are reported in the Result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	return RunContext(context.Background(), scenario, opts...)
}

// RunContext is Run with a caller-supplied context for journal I/O.
func RunContext(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		clock:       testutil.NewManualClock(),
		logger:      zap.NewNop(),
		shards:      1,
		submittedAt: map[postKey]time.Time{},
	}
	for _, opt := range opts {
		opt(h)
	}

	peers, err := newPeerSet(scenario.Peers)
	if err != nil {
		return nil, err
	}
	h.peers = peers

	j, err := journal.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory journal: %w", err)
	}
	defer j.Close()
	h.journal = j

	d := timeline.NewDispatcher(
		timeline.WithClock(h.clock),
		timeline.WithShards(h.shards),
		timeline.WithLogger(h.logger),
	)
	h.recorder = journal.NewRecorder(d, j, h.logger)

	result := NewResult()
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, err
	}

	live := d.Snapshot()
	result.Timelines = h.render(scenario.Peers, live)

	replayed, err := j.Replay(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to replay journal: %w", err)
	}
	if !reflect.DeepEqual(result.Timelines, h.render(scenario.Peers, replayed)) {
		result.AddError("replay: journal replay differs from live snapshot")
	}

	actx := &AssertionContext{
		Store:       live,
		Peers:       peers,
		SubmittedAt: h.submittedAt,
	}
	for _, msg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		sub := step.Submit
		h.clock.Advance(StepInterval)
		now := h.clock.Peek()

		num := sub.ID
		if num == 0 {
			num = uint64(i + 1)
		}

		claimed := now
		if sub.Backdate != "" {
			// Already validated by LoadScenario.
			d, _ := time.ParseDuration(sub.Backdate)
			claimed = now.Add(-d)
		}

		post := timeline.Post{
			ID:        PostNumber(num),
			Author:    h.peers.ids[sub.Author],
			Content:   sub.Content,
			Timestamp: claimed,
		}

		stored, err := h.recorder.SubmitContext(ctx, h.peers.ids[sub.Target], post)
		var outcome Outcome
		switch {
		case err == nil:
			outcome = OutcomeOK
		case timeline.IsAuthorshipMismatch(err):
			outcome = OutcomeAuthorshipMismatch
		case timeline.IsDuplicatePost(err):
			outcome = OutcomeDuplicatePost
		default:
			return fmt.Errorf("steps[%d]: %w", i, err)
		}

		ev := TraceEvent{
			Step:    i + 1,
			Target:  sub.Target,
			Author:  sub.Author,
			Post:    post.ID.String(),
			Outcome: outcome,
		}
		if outcome == OutcomeOK {
			ev.Timestamp = formatTime(stored.Timestamp)
			h.submittedAt[postKey{sub.Target, num}] = now
		}
		result.AddTrace(ev)

		if outcome != step.Expect {
			result.AddError(fmt.Sprintf("steps[%d]: expected %s, got %s", i, step.Expect, outcome))
		}

		h.logger.Debug("scenario step",
			zap.Int("step", i+1),
			zap.String("target", sub.Target),
			zap.String("post_id", post.ID.String()),
			zap.String("outcome", string(outcome)),
		)
	}
	return nil
}

// render lists every declared peer's posts in timeline order.
func (h *Harness) render(names []string, s *timeline.Store) map[string][]TimelineEntry {
	out := make(map[string][]TimelineEntry, len(names))
	for _, name := range names {
		entries := []TimelineEntry{}
		if tl, ok := s.Timeline(h.peers.ids[name]); ok {
			for _, p := range tl.Posts() {
				entries = append(entries, TimelineEntry{
					Post:      p.ID.String(),
					Author:    h.peers.name(p.Author),
					Content:   p.Content,
					Timestamp: formatTime(p.Timestamp),
				})
			}
		}
		out[name] = entries
	}
	return out
}

// PostNumber returns the post id scenarios write as n.
func PostNumber(n uint64) timeline.PostID {
	return timeline.PostID(testutil.SeqUUID(n))
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

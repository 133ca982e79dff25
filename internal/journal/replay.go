package journal

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/peerline/internal/identity"
	"github.com/roach88/peerline/internal/timeline"
)

// Replay rebuilds a store snapshot from the journal. Posts keep the
// timestamps they were stamped with when first accepted.
func (j *Journal) Replay(ctx context.Context) (*timeline.Store, error) {
	entries, err := j.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	s := timeline.New()
	for _, e := range entries {
		s, err = s.Restore(e.Post)
		if err != nil {
			return nil, fmt.Errorf("replay: seq=%d: %w", e.Seq, err)
		}
	}
	return s, nil
}

// Recorder writes every post the dispatcher accepts through to the journal.
// It satisfies feed.Submitter.
type Recorder struct {
	dispatcher *timeline.Dispatcher
	journal    *Journal
	logger     *zap.Logger
}

// NewRecorder wires d to j. A nil logger disables logging.
func NewRecorder(d *timeline.Dispatcher, j *Journal, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{dispatcher: d, journal: j, logger: logger}
}

// Submit is SubmitContext with a background context.
func (r *Recorder) Submit(target identity.PeerID, post timeline.Post) (timeline.Post, error) {
	return r.SubmitContext(context.Background(), target, post)
}

// SubmitContext submits post to the dispatcher and, when accepted, appends
// the stored post to the journal. Rejections are returned untouched and
// nothing is journaled for them.
//
// A post accepted by the dispatcher whose append failed stays live. When it
// is resubmitted the dispatcher reports DUPLICATE_POST; the stored post is
// then appended again, and if that append inserted the row and the content
// matches, the retry succeeds.
func (r *Recorder) SubmitContext(ctx context.Context, target identity.PeerID, post timeline.Post) (timeline.Post, error) {
	stored, err := r.dispatcher.Submit(target, post)
	if timeline.IsDuplicatePost(err) {
		return r.journalLiveCopy(ctx, target, post, err)
	}
	if err != nil {
		return timeline.Post{}, err
	}

	if _, err := r.journal.Append(ctx, stored); err != nil {
		r.logger.Error("journal append failed",
			zap.String("peer", target.String()),
			zap.String("post_id", stored.ID.String()),
			zap.Error(err),
		)
		return stored, fmt.Errorf("record post %s: %w", stored.ID, err)
	}
	return stored, nil
}

// journalLiveCopy journals the live copy of a duplicate post. The row is a no-op
// when already present, in which case dupErr is returned unchanged.
func (r *Recorder) journalLiveCopy(ctx context.Context, target identity.PeerID, post timeline.Post, dupErr error) (timeline.Post, error) {
	tl, ok := r.dispatcher.Timeline(target)
	if !ok {
		return timeline.Post{}, dupErr
	}
	stored, ok := tl.Post(post.ID)
	if !ok {
		return timeline.Post{}, dupErr
	}

	inserted, err := r.journal.Append(ctx, stored)
	if err != nil {
		return timeline.Post{}, fmt.Errorf("record post %s: %w", stored.ID, err)
	}
	if !inserted || stored.Content != post.Content {
		return timeline.Post{}, dupErr
	}
	r.logger.Info("journaled previously unrecorded post",
		zap.String("peer", target.String()),
		zap.String("post_id", stored.ID.String()),
	)
	return stored, nil
}

// Dispatcher returns the wrapped dispatcher.
func (r *Recorder) Dispatcher() *timeline.Dispatcher {
	return r.dispatcher
}

package feed

import (
	"go.uber.org/zap"

	"github.com/roach88/peerline/internal/identity"
	"github.com/roach88/peerline/internal/timeline"
)

// Rejection reasons reported by Ingest.
const (
	ReasonBadSignature       = "bad_signature"
	ReasonAuthorshipMismatch = "authorship_mismatch"
	ReasonStoreError         = "store_error"
)

// Submitter files a post under a peer. *timeline.Dispatcher and
// *journal.Recorder implement it.
type Submitter interface {
	Submit(target identity.PeerID, post timeline.Post) (timeline.Post, error)
}

// Rejection describes one envelope Ingest refused.
type Rejection struct {
	PostID timeline.PostID `json:"post_id"`
	Author identity.PeerID `json:"author"`
	Reason string          `json:"reason"`
	Err    error           `json:"-"`
}

// Report summarizes an ingest run.
type Report struct {
	Owner      identity.PeerID `json:"owner"`
	Accepted   []timeline.Post `json:"accepted"`
	Duplicates int             `json:"duplicates"`
	Rejected   []Rejection     `json:"rejected"`
}

// Ingest files every envelope of f under f.Owner.
//
// Envelopes with a bad signature never reach the store. The store then
// rejects posts whose author is not the feed owner. Duplicates are counted
// but not treated as failures, so ingesting the same feed twice is harmless.
func Ingest(s Submitter, f Feed, logger *zap.Logger) Report {
	if logger == nil {
		logger = zap.NewNop()
	}
	report := Report{Owner: f.Owner, Accepted: []timeline.Post{}, Rejected: []Rejection{}}

	for _, env := range f.Envelopes {
		post := env.Post
		log := logger.With(
			zap.String("peer", f.Owner.String()),
			zap.String("post_id", post.ID.String()),
		)

		if err := env.Verify(); err != nil {
			log.Warn("envelope rejected", zap.String("reason", ReasonBadSignature), zap.Error(err))
			report.Rejected = append(report.Rejected, Rejection{
				PostID: post.ID, Author: post.Author, Reason: ReasonBadSignature, Err: err,
			})
			continue
		}

		stored, err := s.Submit(f.Owner, post)
		switch {
		case err == nil:
			report.Accepted = append(report.Accepted, stored)
		case timeline.IsDuplicatePost(err):
			log.Debug("duplicate post skipped")
			report.Duplicates++
		case timeline.IsAuthorshipMismatch(err):
			log.Warn("envelope rejected", zap.String("reason", ReasonAuthorshipMismatch))
			report.Rejected = append(report.Rejected, Rejection{
				PostID: post.ID, Author: post.Author, Reason: ReasonAuthorshipMismatch, Err: err,
			})
		default:
			log.Error("envelope rejected", zap.String("reason", ReasonStoreError), zap.Error(err))
			report.Rejected = append(report.Rejected, Rejection{
				PostID: post.ID, Author: post.Author, Reason: ReasonStoreError, Err: err,
			})
		}
	}

	logger.Info("feed ingested",
		zap.String("peer", f.Owner.String()),
		zap.Int("accepted", len(report.Accepted)),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("rejected", len(report.Rejected)),
	)
	return report
}

package timeline

import (
	"errors"
	"fmt"

	"github.com/roach88/peerline/internal/identity"
)

// Sentinels matched by errors.Is against a *SubmitError of the same code.
var (
	ErrAuthorshipMismatch = errors.New("authorship mismatch")
	ErrDuplicatePost      = errors.New("duplicate post")
)

// SubmitErrorCode categorizes rejected submissions.
type SubmitErrorCode string

const (
	// ErrCodeAuthorshipMismatch: the claimed author is not the target peer.
	ErrCodeAuthorshipMismatch SubmitErrorCode = "AUTHORSHIP_MISMATCH"

	// ErrCodeDuplicatePost: the target timeline already holds the post ID.
	ErrCodeDuplicatePost SubmitErrorCode = "DUPLICATE_POST"
)

// SubmitError reports why a submission was rejected. The store is never
// modified when one is returned.
type SubmitError struct {
	Code    SubmitErrorCode
	Message string
	Target  identity.PeerID
	Author  identity.PeerID
	PostID  PostID
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("%s: %s (target=%s, post=%s)", e.Code, e.Message, e.Target.Short(), e.PostID)
}

// Is lets errors.Is match the package sentinels.
func (e *SubmitError) Is(target error) bool {
	switch target {
	case ErrAuthorshipMismatch:
		return e.Code == ErrCodeAuthorshipMismatch
	case ErrDuplicatePost:
		return e.Code == ErrCodeDuplicatePost
	}
	return false
}

// IsAuthorshipMismatch reports whether err is an authorship rejection.
func IsAuthorshipMismatch(err error) bool {
	var se *SubmitError
	if errors.As(err, &se) {
		return se.Code == ErrCodeAuthorshipMismatch
	}
	return false
}

// IsDuplicatePost reports whether err is a duplicate-id rejection.
func IsDuplicatePost(err error) bool {
	var se *SubmitError
	if errors.As(err, &se) {
		return se.Code == ErrCodeDuplicatePost
	}
	return false
}

func newAuthorshipError(target identity.PeerID, post Post) *SubmitError {
	return &SubmitError{
		Code:    ErrCodeAuthorshipMismatch,
		Message: fmt.Sprintf("post claims author %s", post.Author.Short()),
		Target:  target,
		Author:  post.Author,
		PostID:  post.ID,
	}
}

func newDuplicateError(target identity.PeerID, post Post) *SubmitError {
	return &SubmitError{
		Code:    ErrCodeDuplicatePost,
		Message: "post id already recorded",
		Target:  target,
		Author:  post.Author,
		PostID:  post.ID,
	}
}

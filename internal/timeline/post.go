package timeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/peerline/internal/identity"
)

// PostID identifies a post. It is a random (v4) UUID.
type PostID uuid.UUID

// NewPostID returns a fresh random PostID.
func NewPostID() PostID {
	return PostID(uuid.New())
}

// ParsePostID parses the canonical UUID text form.
func ParsePostID(s string) (PostID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return PostID{}, fmt.Errorf("parse post id: %w", err)
	}
	return PostID(u), nil
}

func (id PostID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether id is the nil UUID.
func (id PostID) IsZero() bool {
	return uuid.UUID(id) == uuid.Nil
}

// MarshalText implements encoding.TextMarshaler.
func (id PostID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *PostID) UnmarshalText(data []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(data); err != nil {
		return fmt.Errorf("parse post id: %w", err)
	}
	*id = PostID(u)
	return nil
}

// Post is a single content item. Author is a claim until the store accepts it.
type Post struct {
	ID        PostID          `json:"id"`
	Author    identity.PeerID `json:"author"`
	Content   string          `json:"content"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewPost builds a post with a fresh ID and the current time. Nothing is
// validated here; the store checks the post when it is submitted.
func NewPost(author identity.PeerID, content string) Post {
	return Post{
		ID:        NewPostID(),
		Author:    author,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

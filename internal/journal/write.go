package journal

import (
	"context"
	"fmt"

	"github.com/roach88/peerline/internal/timeline"
)

// Append records a post the store accepted.
// Uses ON CONFLICT(author, id) DO NOTHING: inserted is false when the post
// was already journaled, and the existing row is left as it was.
func (j *Journal) Append(ctx context.Context, post timeline.Post) (inserted bool, err error) {
	result, err := j.db.ExecContext(ctx, `
		INSERT INTO posts (id, author, content, timestamp_ns)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(author, id) DO NOTHING
	`,
		post.ID.String(),
		post.Author.String(),
		post.Content,
		post.Timestamp.UnixNano(),
	)
	if err != nil {
		return false, fmt.Errorf("append post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("append post: rows affected: %w", err)
	}
	return rows > 0, nil
}

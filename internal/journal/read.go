package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/peerline/internal/identity"
	"github.com/roach88/peerline/internal/timeline"
)

// Entry is a journaled post with its log position.
type Entry struct {
	Seq  int64
	Post timeline.Post
}

// ReadAll returns every entry ordered by seq ASC, id ASC.
// Returns an empty slice (not nil) for an empty journal.
func (j *Journal) ReadAll(ctx context.Context) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, id, author, content, timestamp_ns
		FROM posts
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	return collectEntries(rows)
}

// ReadTimeline returns peer's entries ordered by seq ASC, id ASC.
func (j *Journal) ReadTimeline(ctx context.Context, peer identity.PeerID) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, id, author, content, timestamp_ns
		FROM posts
		WHERE author = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, peer.String())
	if err != nil {
		return nil, fmt.Errorf("query timeline: %w", err)
	}
	return collectEntries(rows)
}

// ListPeers returns every author with at least one journaled post, sorted.
func (j *Journal) ListPeers(ctx context.Context) ([]identity.PeerID, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT DISTINCT author FROM posts ORDER BY author COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query peers: %w", err)
	}
	defer rows.Close()

	peers := []identity.PeerID{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan peer: %w", err)
		}
		peers = append(peers, identity.PeerID(p))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate peers: %w", err)
	}
	return peers, nil
}

func collectEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e      Entry
		id     string
		author string
		ns     int64
	)
	if err := rows.Scan(&e.Seq, &id, &author, &e.Post.Content, &ns); err != nil {
		return Entry{}, fmt.Errorf("scan post: %w", err)
	}
	postID, err := timeline.ParsePostID(id)
	if err != nil {
		return Entry{}, fmt.Errorf("scan post seq=%d: %w", e.Seq, err)
	}
	e.Post.ID = postID
	e.Post.Author = identity.PeerID(author)
	e.Post.Timestamp = time.Unix(0, ns).UTC()
	return e, nil
}

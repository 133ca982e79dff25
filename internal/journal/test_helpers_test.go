package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/peerline/internal/identity"
	"github.com/roach88/peerline/internal/testutil"
	"github.com/roach88/peerline/internal/timeline"
)

// createTestJournal opens a journal in a temp dir that is closed on cleanup.
func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	j, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

// acceptedPost builds a post as the store would have stored it.
func acceptedPost(peer identity.PeerID, content string, seq uint64) timeline.Post {
	return timeline.Post{
		ID:        timeline.PostID(testutil.SeqUUID(seq)),
		Author:    peer,
		Content:   content,
		Timestamp: testutil.Epoch.Add(timeDuration(seq)),
	}
}

func timeDuration(seq uint64) time.Duration {
	return time.Duration(seq) * time.Second
}

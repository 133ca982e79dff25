package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/peerline/internal/feed"
	"github.com/roach88/peerline/internal/identity"
	"github.com/roach88/peerline/internal/timeline"
)

func TestExportImport(t *testing.T) {
	alice := newTestEnv(t)
	alicePeer := alice.newIdentity(t)
	for _, content := range []string{"one", "two"} {
		_, err := alice.run(t, "post", content)
		require.NoError(t, err)
	}

	feedPath := filepath.Join(alice.dir, "alice.feed")
	var exported exportView
	_, err := alice.runJSON(t, &exported, "export", "--out", feedPath)
	require.NoError(t, err)
	assert.Equal(t, alicePeer, exported.Owner)
	assert.Equal(t, 2, exported.Posts)

	bob := newTestEnv(t)
	bob.newIdentity(t)

	var report importView
	status, err := bob.runJSON(t, &report, "import", feedPath)
	require.NoError(t, err)
	assert.Equal(t, "ok", status)
	assert.Equal(t, alicePeer, report.Owner)
	assert.Equal(t, 2, report.Accepted)
	assert.Empty(t, report.Rejected)

	var view timelineView
	_, err = bob.runJSON(t, &view, "timeline", alicePeer)
	require.NoError(t, err)
	require.Len(t, view.Posts, 2)
	assert.ElementsMatch(t, []string{"one", "two"}, []string{view.Posts[0].Content, view.Posts[1].Content})

	// Importing again only finds duplicates.
	report = importView{}
	_, err = bob.runJSON(t, &report, "import", feedPath)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Accepted)
	assert.Equal(t, 2, report.Duplicates)
}

func TestExport_EmptyTimeline(t *testing.T) {
	env := newTestEnv(t)
	env.newIdentity(t)

	path := filepath.Join(env.dir, "empty.feed")
	var view exportView
	_, err := env.runJSON(t, &view, "export", "--out", path)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Posts)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	f, err := feed.Decode(data)
	require.NoError(t, err)
	assert.Empty(t, f.Envelopes)
}

func TestExport_OtherPeerRefused(t *testing.T) {
	env := newTestEnv(t)
	env.newIdentity(t)
	other := identity.MustNew().Peer().String()

	_, err := env.run(t, "export", other, "--out", filepath.Join(env.dir, "x.feed"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, feed.ErrNotOwner)
}

func TestImport_RejectsForeignPosts(t *testing.T) {
	alice := identity.MustNew()
	mallory := identity.MustNew()

	path, err := mallorySealed(t, mallory, alice.Peer())
	require.NoError(t, err)

	bob := newTestEnv(t)
	var report importView
	status, err := bob.runJSON(t, &report, "import", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "error", status)
	require.Len(t, report.Rejected, 1)
	assert.Equal(t, feed.ReasonAuthorshipMismatch, report.Rejected[0].Reason)

	var view timelineView
	_, err = bob.runJSON(t, &view, "timeline", alice.Peer().String())
	require.NoError(t, err)
	assert.Empty(t, view.Posts)
}

// mallorySealed writes a feed claiming owner but holding a post mallory
// authored and signed.
func mallorySealed(t *testing.T, mallory *identity.Identity, owner identity.PeerID) (string, error) {
	t.Helper()
	env, err := feed.Seal(mallory, timeline.NewPost(mallory.Peer(), "spoof"))
	if err != nil {
		return "", err
	}
	data, err := feed.Encode(feed.Feed{Owner: owner, Envelopes: []feed.Envelope{env}})
	if err != nil {
		return "", err
	}
	path := filepath.Join(t.TempDir(), "spoof.feed")
	return path, os.WriteFile(path, data, 0o644)
}

func TestImport_Malformed(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.dir, "junk.feed")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a feed"), 0o644))

	out, err := env.run(t, "import", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "failed to decode feed")
}

func TestImport_MissingFile(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "import", filepath.Join(env.dir, "absent.feed"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

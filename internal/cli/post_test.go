package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostAndTimeline(t *testing.T) {
	env := newTestEnv(t)
	peer := env.newIdentity(t)

	var first, second postView
	_, err := env.runJSON(t, &first, "post", "hello")
	require.NoError(t, err)
	_, err = env.runJSON(t, &second, "post", "world")
	require.NoError(t, err)

	assert.Equal(t, peer, first.Author)
	assert.Equal(t, "hello", first.Content)
	assert.NotEqual(t, first.ID, second.ID)

	var own timelineView
	_, err = env.runJSON(t, &own, "timeline")
	require.NoError(t, err)
	assert.Equal(t, peer, own.Peer)
	require.Len(t, own.Posts, 2)
	assert.Equal(t, []string{"hello", "world"}, []string{own.Posts[0].Content, own.Posts[1].Content})

	var byArg timelineView
	_, err = env.runJSON(t, &byArg, "timeline", peer)
	require.NoError(t, err)
	assert.Equal(t, own, byArg)
}

func TestPost_TextOutput(t *testing.T) {
	env := newTestEnv(t)
	env.newIdentity(t)

	out, err := env.run(t, "post", "hi")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "✓ Posted "), out)

	out, err = env.run(t, "timeline")
	require.NoError(t, err)
	assert.Contains(t, out, "  hi\n")
}

func TestPost_NoIdentity(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "post", "hi")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestPost_ShardedJournalReplays(t *testing.T) {
	env := newTestEnv(t)
	env.newIdentity(t)

	for _, content := range []string{"a", "b", "c"} {
		_, err := env.run(t, "--shards", "4", "post", content)
		require.NoError(t, err)
	}

	var view timelineView
	_, err := env.runJSON(t, &view, "timeline")
	require.NoError(t, err)
	assert.Len(t, view.Posts, 3)
}

func TestTimeline_UnknownPeer(t *testing.T) {
	env := newTestEnv(t)
	peer := env.newIdentity(t)

	other := newTestEnv(t)
	out, err := other.run(t, "timeline", peer)
	require.NoError(t, err)
	assert.Contains(t, out, "No posts for")
}

func TestTimeline_InvalidPeer(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "timeline", "not-a-peer!")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCommands_HonorCancelledContext(t *testing.T) {
	env := newTestEnv(t)
	env.newIdentity(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, args := range [][]string{
		{"post", "hello"},
		{"timeline"},
		{"replay"},
	} {
		_, err := env.runContext(t, ctx, args...)
		require.Error(t, err, "%v", args)
		assert.ErrorIs(t, err, context.Canceled, "%v", args)
		assert.Equal(t, ExitCommandError, GetExitCode(err), "%v", args)
	}

	var own timelineView
	_, err := env.runJSON(t, &own, "timeline")
	require.NoError(t, err)
	assert.Empty(t, own.Posts)
}

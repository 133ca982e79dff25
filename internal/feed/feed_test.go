package feed

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/roach88/peerline/internal/codec"
	"github.com/roach88/peerline/internal/identity"
	"github.com/roach88/peerline/internal/timeline"
)

func ownTimeline(t *testing.T, id *identity.Identity, contents ...string) *timeline.Timeline {
	t.Helper()
	d := timeline.NewDispatcher()
	for _, c := range contents {
		_, err := d.Submit(id.Peer(), timeline.NewPost(id.Peer(), c))
		require.NoError(t, err)
	}
	tl, ok := d.Timeline(id.Peer())
	require.True(t, ok)
	return tl
}

func TestSealVerify(t *testing.T) {
	id := identity.MustNew()
	env, err := Seal(id, timeline.NewPost(id.Peer(), "hello"))
	require.NoError(t, err)
	assert.NoError(t, env.Verify())
}

func TestSeal_RefusesForeignPost(t *testing.T) {
	id := identity.MustNew()
	other := identity.MustNew()

	_, err := Seal(id, timeline.NewPost(other.Peer(), "not mine"))
	assert.True(t, errors.Is(err, ErrNotOwner))
}

func TestVerify_DetectsTampering(t *testing.T) {
	id := identity.MustNew()
	env, err := Seal(id, timeline.NewPost(id.Peer(), "original"))
	require.NoError(t, err)

	env.Post.Content = "edited"
	assert.True(t, errors.Is(env.Verify(), identity.ErrBadSignature))
}

func TestVerify_IgnoresTimestamp(t *testing.T) {
	id := identity.MustNew()
	env, err := Seal(id, timeline.NewPost(id.Peer(), "original"))
	require.NoError(t, err)

	env.Post.Timestamp = env.Post.Timestamp.Add(-48 * time.Hour)
	assert.NoError(t, env.Verify())
}

func TestEncodeDecode(t *testing.T) {
	id := identity.MustNew()
	f, err := Export(id, ownTimeline(t, id, "one", "two"))
	require.NoError(t, err)

	data, err := Encode(f)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, id.Peer(), got.Owner)
	require.Len(t, got.Envelopes, 2)
	for _, env := range got.Envelopes {
		assert.NoError(t, env.Verify())
	}
}

func TestExport_OnlyOwner(t *testing.T) {
	owner := identity.MustNew()
	other := identity.MustNew()

	_, err := Export(other, ownTimeline(t, owner, "x"))
	assert.True(t, errors.Is(err, ErrNotOwner))
}

func TestDecode_RejectsSchemaViolations(t *testing.T) {
	id := identity.MustNew()

	cases := map[string]any{
		"missing owner": map[string]any{"version": 1, "envelopes": []any{}},
		"bad version":   map[string]any{"version": 2, "owner": id.Peer(), "envelopes": []any{}},
		"bad post id": map[string]any{
			"version": 1,
			"owner":   id.Peer(),
			"envelopes": []any{map[string]any{
				"post": map[string]any{
					"id": "nope", "author": id.Peer(), "content": "", "timestamp": "2024-01-01T00:00:00Z",
				},
				"signature": "AA==",
			}},
		},
		"extra field": map[string]any{"version": 1, "owner": id.Peer(), "envelopes": []any{}, "x": 1},
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			data, err := codec.Pack(doc)
			require.NoError(t, err)
			_, err = Decode(data)
			assert.True(t, errors.Is(err, ErrInvalidFeed), "got %v", err)
		})
	}
}

func TestDecode_RejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("garbage"))
	assert.True(t, errors.Is(err, ErrInvalidFeed))
}

func TestIngest(t *testing.T) {
	owner := identity.MustNew()
	f, err := Export(owner, ownTimeline(t, owner, "a", "b", "c"))
	require.NoError(t, err)

	d := timeline.NewDispatcher()
	report := Ingest(d, f, zaptest.NewLogger(t))

	assert.Len(t, report.Accepted, 3)
	assert.Empty(t, report.Rejected)
	tl, ok := d.Timeline(owner.Peer())
	require.True(t, ok)
	assert.Equal(t, 3, tl.Len())
}

func TestIngest_Idempotent(t *testing.T) {
	owner := identity.MustNew()
	f, err := Export(owner, ownTimeline(t, owner, "a", "b"))
	require.NoError(t, err)

	d := timeline.NewDispatcher()
	Ingest(d, f, nil)
	report := Ingest(d, f, nil)

	assert.Empty(t, report.Accepted)
	assert.Equal(t, 2, report.Duplicates)
	assert.Empty(t, report.Rejected)
}

func TestIngest_RejectsBadSignature(t *testing.T) {
	owner := identity.MustNew()
	f, err := Export(owner, ownTimeline(t, owner, "genuine"))
	require.NoError(t, err)
	f.Envelopes[0].Post.Content = "forged"

	d := timeline.NewDispatcher()
	report := Ingest(d, f, nil)

	require.Len(t, report.Rejected, 1)
	assert.Equal(t, ReasonBadSignature, report.Rejected[0].Reason)
	assert.Equal(t, 0, d.Snapshot().Len())
}

// A validly signed post from a third party smuggled into someone else's feed
// is refused by the store's authorship rule.
func TestIngest_RejectsForeignAuthor(t *testing.T) {
	owner := identity.MustNew()
	intruder := identity.MustNew()

	env, err := Seal(intruder, timeline.NewPost(intruder.Peer(), "smuggled"))
	require.NoError(t, err)
	f := Feed{Version: Version, Owner: owner.Peer(), Envelopes: []Envelope{env}}

	d := timeline.NewDispatcher()
	report := Ingest(d, f, nil)

	require.Len(t, report.Rejected, 1)
	assert.Equal(t, ReasonAuthorshipMismatch, report.Rejected[0].Reason)
	_, ok := d.Timeline(owner.Peer())
	assert.False(t, ok)
	_, ok = d.Timeline(intruder.Peer())
	assert.False(t, ok)
}

type failingSubmitter struct{}

func (failingSubmitter) Submit(identity.PeerID, timeline.Post) (timeline.Post, error) {
	return timeline.Post{}, errors.New("disk full")
}

func TestIngest_StoreError(t *testing.T) {
	owner := identity.MustNew()
	f, err := Export(owner, ownTimeline(t, owner, "x"))
	require.NoError(t, err)

	report := Ingest(failingSubmitter{}, f, nil)
	require.Len(t, report.Rejected, 1)
	assert.Equal(t, ReasonStoreError, report.Rejected[0].Reason)
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// testEnv is one peer's working directory: config, journal and identity.
type testEnv struct {
	dir      string
	db       string
	identity string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	return &testEnv{
		dir:      dir,
		db:       filepath.Join(dir, "peerline.db"),
		identity: filepath.Join(dir, "identity.key"),
	}
}

// run executes the root command with the env's paths and returns stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return e.runContext(t, context.Background(), args...)
}

// runContext is run with ctx passed to ExecuteContext.
func (e *testEnv) runContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand(&RootOptions{Logger: zaptest.NewLogger(t)})
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{
		"--config", filepath.Join(e.dir, "peerline.cue"),
		"--db", e.db,
		"--identity", e.identity,
	}, args...))

	err := cmd.ExecuteContext(ctx)
	return buf.String(), err
}

// runJSON runs with --format json and decodes the response data into v.
func (e *testEnv) runJSON(t *testing.T, v any, args ...string) (string, error) {
	t.Helper()

	out, err := e.run(t, append([]string{"--format", "json"}, args...)...)
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	if v != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, v))
	}
	return resp.Status, err
}

// newIdentity creates the env's identity and returns its peer id.
func (e *testEnv) newIdentity(t *testing.T) string {
	t.Helper()
	var view identityView
	status, err := e.runJSON(t, &view, "identity", "new")
	require.NoError(t, err)
	require.Equal(t, "ok", status)
	return view.Peer
}

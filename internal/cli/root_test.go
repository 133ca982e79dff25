package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "peerline", cmd.Use)
	assert.Contains(t, cmd.Long, "timelines")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"identity", "new"},
		{"identity", "show"},
		{"post"},
		{"timeline"},
		{"export"},
		{"import"},
		{"replay"},
		{"test"},
	}

	for _, path := range commands {
		t.Run(path[len(path)-1], func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()
	flags := cmd.PersistentFlags()

	verbose := flags.Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	format := flags.Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	config := flags.Lookup("config")
	require.NotNil(t, config)
	assert.Equal(t, "peerline.cue", config.DefValue)

	for _, name := range []string{"db", "identity", "shards"} {
		assert.NotNil(t, flags.Lookup(name), name)
	}
}

func TestExportRequiresOut(t *testing.T) {
	cmd := NewRootCommand()
	exportCmd, _, err := cmd.Find([]string{"export"})
	require.NoError(t, err)

	out := exportCmd.Flags().Lookup("out")
	require.NotNil(t, out)
	assert.Equal(t, "o", out.Shorthand)
}

func TestInvalidFormat(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "--format", "xml", "replay")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}

func TestArgumentErrorsAreCommandErrors(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "post")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

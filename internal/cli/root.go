package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/peerline/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Overrides for config file values. Empty means "use the file".
	DB       string
	Identity string
	Shards   int

	// Logger replaces the configured logger. Tests set it.
	Logger *zap.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the peerline CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "peerline",
		Short: "peerline - peer-to-peer timelines",
		Long: `Keep a local store of per-peer timelines, post to your own timeline and
exchange signed feeds with other peers.

Each peer's timeline can only hold posts that peer authored, a post id is
accepted once per timeline, and every accepted post is stamped with the
time it arrived.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.ConfigPath, "config", config.DefaultFile, "path to CUE config file")
	flags.StringVar(&opts.DB, "db", "", "path to SQLite journal (overrides config)")
	flags.StringVar(&opts.Identity, "identity", "", "path to identity seed file (overrides config)")
	flags.IntVar(&opts.Shards, "shards", 0, "dispatcher shards (overrides config)")

	cmd.AddCommand(NewIdentityCommand(opts))
	cmd.AddCommand(NewPostCommand(opts))
	cmd.AddCommand(NewTimelineCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

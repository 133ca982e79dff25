package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/peerline/internal/identity"
)

// IdentityOptions holds flags for the identity commands.
type IdentityOptions struct {
	*RootOptions
	Out   string
	Force bool
}

type identityView struct {
	Peer string `json:"peer"`
	File string `json:"file"`
}

// NewIdentityCommand creates the identity command group.
func NewIdentityCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Manage the local peer identity",
	}
	cmd.AddCommand(newIdentityNewCommand(rootOpts))
	cmd.AddCommand(newIdentityShowCommand(rootOpts))
	return cmd
}

func newIdentityNewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IdentityOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Generate a new identity",
		Long: `Generate a new sr25519 identity and write its seed to the identity file.

The identity file defaults to the config's identity path. An existing file
is never overwritten unless --force is given.

Examples:
  peerline identity new
  peerline identity new --out ./alice.key`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdentityNew(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the seed to this file")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing identity file")
	return cmd
}

func runIdentityNew(opts *IdentityOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout())

	path := opts.Out
	if path == "" {
		cfg, err := loadConfig(opts.RootOptions)
		if err != nil {
			return f.fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
		}
		path = cfg.Identity
	}

	if _, err := os.Stat(path); err == nil && !opts.Force {
		return f.fail(ExitCommandError, ErrCodeIdentity,
			fmt.Sprintf("identity file %s already exists (use --force to replace it)", path), nil)
	}

	id, err := identity.New()
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeIdentity, "failed to generate identity", err)
	}
	if err := writeIdentity(path, id); err != nil {
		return f.fail(ExitCommandError, ErrCodeIdentity, "failed to save identity", err)
	}

	view := identityView{Peer: id.Peer().String(), File: path}
	return f.Success(view, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Created identity %s\n", view.Peer)
		fmt.Fprintf(w, "  Seed written to %s\n", view.File)
	})
}

func newIdentityShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the local peer id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdentityShow(rootOpts, cmd)
		},
	}
}

func runIdentityShow(opts *RootOptions, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout())

	cfg, err := loadConfig(opts)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	id, err := readIdentity(cfg.Identity)
	if err != nil {
		return identityError(f, err)
	}

	view := identityView{Peer: id.Peer().String(), File: cfg.Identity}
	return f.Success(view, func(w io.Writer) {
		fmt.Fprintln(w, view.Peer)
	})
}

func identityError(f *OutputFormatter, err error) error {
	msg := "failed to load identity"
	if errors.Is(err, ErrNoIdentity) {
		msg = "no identity found"
	}
	return f.fail(ExitCommandError, ErrCodeIdentity, msg, err)
}

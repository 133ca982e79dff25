package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/peerline/internal/feed"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Out string
}

type exportView struct {
	Owner string `json:"owner"`
	Posts int    `json:"posts"`
	File  string `json:"file"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export [peer] --out FILE",
		Short: "Write your timeline as a signed feed",
		Long: `Seal every post of the local identity's timeline into a signed feed file.

Only the local identity's own timeline can be exported, since each post is
signed with its key. Giving any other peer is an error.

Examples:
  peerline export --out alice.feed`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			peer := ""
			if len(args) == 1 {
				peer = args[0]
			}
			return runExport(opts, peer, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "feed file to write (required)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runExport(opts *ExportOptions, peerArg string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout())

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	id, err := readIdentity(cfg.Identity)
	if err != nil {
		return identityError(f, err)
	}
	if peerArg != "" && peerArg != id.Peer().String() {
		return f.fail(ExitCommandError, ErrCodeArgs,
			fmt.Sprintf("cannot export %s", peerArg), feed.ErrNotOwner)
	}

	s, err := openSession(ctx, opts.RootOptions, f)
	if err != nil {
		return err
	}
	defer s.Close()

	out := feed.Feed{Version: feed.Version, Owner: id.Peer()}
	if tl, ok := s.dispatcher().Timeline(id.Peer()); ok {
		out, err = feed.Export(id, tl)
		if err != nil {
			return f.fail(ExitCommandError, ErrCodeFeed, "failed to seal feed", err)
		}
	}

	data, err := feed.Encode(out)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeFeed, "failed to encode feed", err)
	}
	if err := os.WriteFile(opts.Out, data, 0o644); err != nil {
		return f.fail(ExitCommandError, ErrCodeFeed, "failed to write feed", err)
	}

	s.logger.Info("feed exported",
		zap.String("peer", id.Peer().String()),
		zap.Int("posts", len(out.Envelopes)),
		zap.String("file", opts.Out),
	)

	view := exportView{Owner: id.Peer().String(), Posts: len(out.Envelopes), File: opts.Out}
	return f.Success(view, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Exported %d post(s) to %s\n", view.Posts, view.File)
	})
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Ingest a peer's signed feed",
		Long: `Verify and ingest a feed file produced by "peerline export".

Every post must carry a valid signature by the feed owner and be authored
by the owner. Posts already held are skipped, so importing the same feed
twice is harmless.

Exit codes:
  0 - Every post was accepted or already held
  1 - One or more posts were rejected
  2 - Command error (unreadable or malformed feed, journal errors)

Examples:
  peerline import bob.feed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, args[0], cmd)
		},
	}
}

type importView struct {
	Owner      string           `json:"owner"`
	Accepted   int              `json:"accepted"`
	Duplicates int              `json:"duplicates"`
	Rejected   []feed.Rejection `json:"rejected"`
}

func runImport(opts *RootOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := newFormatter(opts, cmd.OutOrStdout())

	data, err := os.ReadFile(path)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeFeed, "failed to read feed", err)
	}
	in, err := feed.Decode(data)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeFeed, "failed to decode feed", err)
	}

	s, err := openSession(ctx, opts, f)
	if err != nil {
		return err
	}
	defer s.Close()

	report := feed.Ingest(s.recorder, in, s.logger)
	for _, r := range report.Rejected {
		if r.Reason == feed.ReasonStoreError {
			return f.fail(ExitCommandError, ErrCodeJournal, "failed to record post", r.Err)
		}
	}

	view := importView{
		Owner:      report.Owner.String(),
		Accepted:   len(report.Accepted),
		Duplicates: report.Duplicates,
		Rejected:   report.Rejected,
	}
	text := func(w io.Writer) {
		fmt.Fprintf(w, "Imported feed from %s: %d accepted, %d already held, %d rejected\n",
			report.Owner.Short(), view.Accepted, view.Duplicates, len(view.Rejected))
		for _, r := range view.Rejected {
			fmt.Fprintf(w, "  ✗ %s: %s\n", r.PostID, r.Reason)
		}
	}

	if len(report.Rejected) > 0 {
		_ = f.Failure(view, text)
		return NewExitError(ExitFailure, fmt.Sprintf("%d post(s) rejected", len(report.Rejected)))
	}
	return f.Success(view, text)
}

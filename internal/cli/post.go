package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/peerline/internal/timeline"
)

// NewPostCommand creates the post command.
func NewPostCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "post <content>",
		Short: "Post to your own timeline",
		Long: `Create a post authored by the local identity and file it under the local
peer's timeline. The post is stamped with the current time and journaled.

Examples:
  peerline post "hello, world"
  peerline post "hello" --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPost(rootOpts, args[0], cmd)
		},
	}
}

func runPost(opts *RootOptions, content string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := newFormatter(opts, cmd.OutOrStdout())

	cfg, err := loadConfig(opts)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	id, err := readIdentity(cfg.Identity)
	if err != nil {
		return identityError(f, err)
	}

	s, err := openSession(ctx, opts, f)
	if err != nil {
		return err
	}
	defer s.Close()

	stored, err := s.recorder.SubmitContext(ctx, id.Peer(), timeline.NewPost(id.Peer(), content))
	if err != nil {
		return submitError(f, err)
	}

	view := viewPost(stored)
	return f.Success(view, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Posted %s at %s\n", view.ID, view.Timestamp)
	})
}

// submitError maps store rejections to ExitFailure and everything else to
// ExitCommandError.
func submitError(f *OutputFormatter, err error) error {
	if timeline.IsAuthorshipMismatch(err) || timeline.IsDuplicatePost(err) {
		return f.fail(ExitFailure, ErrCodeRejected, "post rejected", err)
	}
	return f.fail(ExitCommandError, ErrCodeJournal, "failed to record post", err)
}

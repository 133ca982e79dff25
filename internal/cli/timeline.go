package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/peerline/internal/identity"
)

type timelineView struct {
	Peer  string     `json:"peer"`
	Posts []postView `json:"posts"`
}

// NewTimelineCommand creates the timeline command.
func NewTimelineCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "timeline [peer]",
		Short: "List a peer's posts",
		Long: `List the posts in a peer's timeline, oldest first. Without an argument
the local identity's timeline is listed.

Examples:
  peerline timeline
  peerline timeline <peer-id>`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			peer := ""
			if len(args) == 1 {
				peer = args[0]
			}
			return runTimeline(rootOpts, peer, cmd)
		},
	}
}

func runTimeline(opts *RootOptions, peerArg string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := newFormatter(opts, cmd.OutOrStdout())

	peer, err := resolvePeer(opts, peerArg, f)
	if err != nil {
		return err
	}

	s, err := openSession(ctx, opts, f)
	if err != nil {
		return err
	}
	defer s.Close()

	view := timelineView{Peer: peer.String(), Posts: []postView{}}
	if tl, ok := s.dispatcher().Timeline(peer); ok {
		for _, p := range tl.Posts() {
			view.Posts = append(view.Posts, viewPost(p))
		}
	}

	return f.Success(view, func(w io.Writer) {
		if len(view.Posts) == 0 {
			fmt.Fprintf(w, "No posts for %s.\n", peer.Short())
			return
		}
		for _, p := range view.Posts {
			fmt.Fprintf(w, "%s  %s  %s\n", p.Timestamp, p.ID, p.Content)
		}
	})
}

// resolvePeer parses peerArg, or falls back to the local identity when it
// is empty.
func resolvePeer(opts *RootOptions, peerArg string, f *OutputFormatter) (identity.PeerID, error) {
	if peerArg != "" {
		peer, err := identity.ParsePeerID(peerArg)
		if err != nil {
			return "", f.fail(ExitCommandError, ErrCodeArgs, "invalid peer id", err)
		}
		return peer, nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return "", f.fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	id, err := readIdentity(cfg.Identity)
	if err != nil {
		return "", identityError(f, err)
	}
	return id.Peer(), nil
}

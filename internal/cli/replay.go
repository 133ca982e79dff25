package cli

import (
	"fmt"
	"io"
	"reflect"

	"github.com/spf13/cobra"

	"github.com/roach88/peerline/internal/journal"
	"github.com/roach88/peerline/internal/timeline"
)

// ReplayPeerResult is the replayed state of one peer.
type ReplayPeerResult struct {
	Peer  string `json:"peer"`
	Posts int    `json:"posts"`
}

// ReplayResult holds the replay outcome.
type ReplayResult struct {
	Peers         []ReplayPeerResult `json:"peers"`
	TotalPosts    int                `json:"total_posts"`
	Deterministic bool               `json:"deterministic"`

	// Complete is true when every journaled author has a replayed timeline.
	Complete bool `json:"complete"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "replay",
		Short: "Rebuild the store from the journal and verify determinism",
		Long: `Rebuild the timeline store from the journal twice and check both rebuilds
hold the same posts with the same timestamps.

Exit codes:
  0 - Replay is deterministic
  1 - The two rebuilds differ
  2 - Command error (journal unreadable, etc.)

Examples:
  peerline replay
  peerline replay --db ./peerline.db --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(rootOpts, cmd)
		},
	}
}

func runReplay(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := newFormatter(opts, cmd.OutOrStdout())

	cfg, err := loadConfig(opts)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	j, err := journal.Open(cfg.DB)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeJournal, "failed to open journal", err)
	}
	defer j.Close()

	first, err := j.Replay(ctx)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeJournal, "first replay failed", err)
	}
	second, err := j.Replay(ctx)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeJournal, "second replay failed", err)
	}

	journaled, err := j.ListPeers(ctx)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeJournal, "failed to list journaled peers", err)
	}

	result := ReplayResult{
		Peers:         []ReplayPeerResult{},
		Deterministic: storesEqual(first, second),
		Complete:      reflect.DeepEqual(journaled, first.Peers()),
	}
	for _, peer := range first.Peers() {
		tl, _ := first.Timeline(peer)
		result.Peers = append(result.Peers, ReplayPeerResult{Peer: peer.String(), Posts: tl.Len()})
		result.TotalPosts += tl.Len()
	}

	text := func(w io.Writer) {
		if len(result.Peers) == 0 {
			fmt.Fprintln(w, "No posts found in journal.")
			return
		}
		fmt.Fprintf(w, "Replayed %d post(s) across %d peer(s)\n", result.TotalPosts, len(result.Peers))
		if opts.Verbose {
			for _, p := range result.Peers {
				fmt.Fprintf(w, "  %s: %d post(s)\n", p.Peer, p.Posts)
			}
		}
		if result.Deterministic {
			fmt.Fprintln(w, "✓ Replay is deterministic")
		} else {
			fmt.Fprintln(w, "✗ Replay is not deterministic")
		}
		if !result.Complete {
			fmt.Fprintln(w, "✗ Journaled authors missing from replay")
		}
	}

	if !result.Deterministic || !result.Complete {
		_ = f.Failure(result, text)
		return NewExitError(ExitFailure, "replay verification failed")
	}
	return f.Success(result, text)
}

// storesEqual compares two snapshots post by post.
func storesEqual(a, b *timeline.Store) bool {
	if !reflect.DeepEqual(a.Peers(), b.Peers()) {
		return false
	}
	for _, peer := range a.Peers() {
		ta, _ := a.Timeline(peer)
		tb, _ := b.Timeline(peer)
		if !postsEqual(ta.Posts(), tb.Posts()) {
			return false
		}
	}
	return true
}

func postsEqual(a, b []timeline.Post) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Author != b[i].Author ||
			a[i].Content != b[i].Content || !a[i].Timestamp.Equal(b[i].Timestamp) {
			return false
		}
	}
	return true
}

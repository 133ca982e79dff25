package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/peerline/internal/config"
	"github.com/roach88/peerline/internal/identity"
	"github.com/roach88/peerline/internal/journal"
	"github.com/roach88/peerline/internal/logging"
	"github.com/roach88/peerline/internal/timeline"
)

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.DB != "" {
		cfg.DB = opts.DB
	}
	if opts.Identity != "" {
		cfg.Identity = opts.Identity
	}
	if opts.Shards > 0 {
		cfg.Shards = opts.Shards
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func newLogger(opts *RootOptions, cfg config.Config) (*zap.Logger, error) {
	if opts.Logger != nil {
		return opts.Logger, nil
	}
	return logging.New(cfg.Log.Level, cfg.Log.Format)
}

// session is the state a command works against: the journal, a dispatcher
// seeded from its replay, and a recorder writing accepted posts back.
type session struct {
	cfg      config.Config
	logger   *zap.Logger
	journal  *journal.Journal
	recorder *journal.Recorder
}

// openSession loads config, opens the journal and replays it.
func openSession(ctx context.Context, opts *RootOptions, f *OutputFormatter) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, f.fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	logger, err := newLogger(opts, cfg)
	if err != nil {
		return nil, f.fail(ExitCommandError, ErrCodeConfig, "failed to build logger", err)
	}

	j, err := journal.Open(cfg.DB)
	if err != nil {
		return nil, f.fail(ExitCommandError, ErrCodeJournal, "failed to open journal", err)
	}
	snapshot, err := j.Replay(ctx)
	if err != nil {
		j.Close()
		return nil, f.fail(ExitCommandError, ErrCodeJournal, "failed to replay journal", err)
	}

	d := timeline.NewDispatcherFrom(snapshot,
		timeline.WithShards(cfg.Shards),
		timeline.WithLogger(logger),
	)
	logger.Debug("journal replayed",
		zap.String("db", cfg.DB),
		zap.Int("peers", snapshot.Len()),
		zap.Int("shards", d.Shards()),
	)

	return &session{
		cfg:      cfg,
		logger:   logger,
		journal:  j,
		recorder: journal.NewRecorder(d, j, logger),
	}, nil
}

func (s *session) Close() error {
	_ = s.logger.Sync()
	return s.journal.Close()
}

func (s *session) dispatcher() *timeline.Dispatcher {
	return s.recorder.Dispatcher()
}

// ErrNoIdentity is returned when the identity file does not exist.
var ErrNoIdentity = errors.New("no identity (run `peerline identity new`)")

// readIdentity loads the seed file at path.
func readIdentity(path string) (*identity.Identity, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNoIdentity)
	}
	if err != nil {
		return nil, fmt.Errorf("read identity: %w", err)
	}
	id, err := identity.FromSeedHex(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return id, nil
}

// writeIdentity stores id's seed at path, creating parent directories.
func writeIdentity(path string, id *identity.Identity) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create identity directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(id.SeedHex()+"\n"), 0o600); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	return nil
}

// postView is the JSON and text shape of a post.
type postView struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

func viewPost(p timeline.Post) postView {
	return postView{
		ID:        p.ID.String(),
		Author:    p.Author.String(),
		Content:   p.Content,
		Timestamp: p.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

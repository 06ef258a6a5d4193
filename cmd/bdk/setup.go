package main

import (
	"sync"

	"github.com/davidcforbes/beads-kanban/internal/board"
	"github.com/davidcforbes/beads-kanban/internal/config"
	"github.com/davidcforbes/beads-kanban/internal/util"
	"github.com/davidcforbes/beads-kanban/internal/workspace"
)

var (
	localCfgOnce sync.Once
	localCfg     *config.LocalConfig
)

// localConfig reads bd's own config.yaml once per invocation. It feeds
// the workspace issue prefix and the form's default author.
func localConfig() *config.LocalConfig {
	localCfgOnce.Do(func() {
		localCfg = config.LoadLocalConfigWithEnv(workspace.FindBeadsDir())
	})
	return localCfg
}

// resolveProfile loads the board layout for the configured profile and
// folds its overrides into opts.
func resolveProfile(opts *config.Options) (config.Profile, error) {
	bf, err := config.LoadBoardFile(workspace.FindBeadsDir())
	if err != nil {
		return config.Profile{}, err
	}
	p, err := bf.Resolve(opts.Profile)
	if err != nil {
		return config.Profile{}, err
	}
	if p.PageSize > 0 {
		opts.PageSize = p.PageSize
	}
	if p.PreloadClosed != nil {
		opts.PreloadClosed = *p.PreloadClosed
	}
	return p, nil
}

// openBoard builds the board stack for this invocation: resolved
// options, the layout profile's columns, and an exec-backed client.
func openBoard() (*board.Board, error) {
	opts := config.BoardOptions()
	profile, err := resolveProfile(&opts)
	if err != nil {
		return nil, err
	}
	return board.Open(opts, profile.ColumnKeys()), nil
}

// normalizeID applies the workspace ID prefix to bare inputs so users
// can type "42" for "bd-42". An explicit id-prefix setting wins over
// the workspace's issue-prefix.
func normalizeID(input string) string {
	prefix := config.GetString("id-prefix")
	if prefix == "" {
		prefix = localConfig().IssuePrefix
	}
	return util.NormalizeID(input, prefix)
}

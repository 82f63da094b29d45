// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"rsc.io/ghissue"
	"rsc.io/ghissue/internal/config"
	"rsc.io/ghissue/internal/httplog"
	"rsc.io/ghissue/internal/logging"
)

// An app holds the state shared by all commands.
type app struct {
	project  string
	envFile  string
	logHTTP  bool
	jsonFlag bool

	cfg    config.Config
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	a := new(app)
	root := &cobra.Command{
		Use:   "ghissue",
		Short: "Create, edit, find and close GitHub issues",
		Long: `Ghissue creates, edits, finds and closes GitHub issues.

Bodies longer than GitHub accepts are cut at a line boundary and
marked as truncated.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.project, "project", "p", "", "GitHub `owner/repo` (default $GITHUB_REPOSITORY)")
	flags.StringVar(&a.envFile, "env-file", "", "load environment from `file` (default .env)")
	flags.BoolVar(&a.logHTTP, "loghttp", false, "log http requests")
	flags.BoolVar(&a.jsonFlag, "json", false, "write JSON output")

	root.AddCommand(
		newCreateCommand(a),
		newUpdateCommand(a),
		newShowCommand(a),
		newFindCommand(a),
		newSearchCommand(a),
		newCloseCommand(a),
		newReopenCommand(a),
		newCommentCommand(a),
		newTruncateCommand(a),
	)
	return root
}

// load reads the configuration and sets up logging.
func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// repo returns the repository named by -p or $GITHUB_REPOSITORY.
func (a *app) repo() (ghissue.Repo, error) {
	if a.project != "" {
		r, err := ghissue.ParseRepo(a.project)
		if err != nil {
			return ghissue.Repo{}, fmt.Errorf("invalid -p argument: %w", err)
		}
		return r, nil
	}
	if a.cfg.Repository == "" {
		return ghissue.Repo{}, errors.New("no repository: use -p owner/repo or set $GITHUB_REPOSITORY")
	}
	r, err := a.cfg.Repo()
	if err != nil {
		return ghissue.Repo{}, fmt.Errorf("invalid $GITHUB_REPOSITORY: %w", err)
	}
	return r, nil
}

// client returns an authenticated client and the repository to work on.
func (a *app) client() (*ghissue.Client, ghissue.Repo, error) {
	repo, err := a.repo()
	if err != nil {
		return nil, ghissue.Repo{}, err
	}
	token, err := a.cfg.TokenSources().Lookup()
	if err != nil {
		return nil, ghissue.Repo{}, err
	}

	var transport http.RoundTripper
	if a.logHTTP {
		transport = httplog.New(transport, a.logger)
	}
	c, err := ghissue.NewClient(token,
		ghissue.WithHTTPClient(&http.Client{Transport: transport}),
		ghissue.WithBaseURL(a.cfg.APIURL),
		ghissue.WithLogger(a.logger),
		ghissue.WithBodyLimit(a.cfg.BodyLimit()),
		ghissue.WithMaxRetries(a.cfg.MaxRetries),
	)
	if err != nil {
		return nil, ghissue.Repo{}, err
	}
	return c, repo, nil
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mschirtzinger/git-copyright/internal/config"
	"github.com/mschirtzinger/git-copyright/internal/logging"
	"github.com/mschirtzinger/git-copyright/internal/syncer"
	"github.com/mschirtzinger/git-copyright/internal/ui"
	"github.com/mschirtzinger/git-copyright/internal/vcs"
)

func newRootCmd() *cobra.Command {
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:   "git-copyright [paths...]",
		Short: "Sync copyright notices with git history",
		Long: `Insert or update the copyright notice at the top of every tracked file.

For each file the year range runs from the commit that introduced it
(following renames) to the commit that last changed it:

  # Copyright (c) 2019-2023 Acme Ltd.

An existing notice is updated in place and never narrowed. Files with
uncommitted changes are left alone unless --ignore-uncommitted is set.

Exit status is 0 on success, 1 when a file failed, was blocked by local
changes or is outdated (--check), and 2 on configuration errors.`,
		Example: `  git-copyright --name "Acme Ltd."
  git-copyright -n "Acme Ltd." --check
  git-copyright -n "Acme Ltd." src/ cmd/main.go
  GIT_COPYRIGHT_NAME="Acme Ltd." git-copyright watch`,
		Args:          cobra.ArbitraryArgs,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, v, args)
		},
	}

	f := cmd.PersistentFlags()
	f.StringP(config.KeyRepo, "r", ".", "Repository path")
	f.StringP(config.KeyName, "n", "", "Copyright holder name (required unless set in config or GIT_COPYRIGHT_NAME)")
	f.StringP(config.KeyConfig, "c", "", "Configuration file (YAML, JSON or TOML); defaults to .git-copyright.{yaml,yml,toml} in the repository")
	f.Bool(config.KeyIgnoreUncommitted, false, "Rewrite files even if they have uncommitted changes")
	f.Bool(config.KeyCheck, false, "Report outdated notices without writing")
	f.IntP(config.KeyJobs, "j", 0, "Files processed in parallel (default: number of CPUs)")
	f.String(config.KeyRef, vcs.DefaultRef, "Commit whose tree and history are used")
	f.StringSlice(config.KeyExclude, nil, "Extra ignore glob (repeatable)")
	f.String(config.KeyDateSource, "", "Commit date to use: committer or author")
	f.Bool(config.KeyJSON, false, "Print results as JSON")
	f.String(config.KeyLogLevel, "info", "Log level: debug, info, warn, error")
	f.String(config.KeyLogFile, "", "Also write JSON logs to this file (rotated)")
	f.BoolP(config.KeyVerbose, "v", false, "Debug logging and list every file")

	cmd.AddCommand(newWatchCmd(v))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// app is everything a run needs, built once at startup.
type app struct {
	settings config.Settings
	cfg      *config.Config
	repo     vcs.VCS
	root     string
	logger   *slog.Logger
	closer   io.Closer
}

func (a *app) Close() error {
	return a.closer.Close()
}

// setup resolves settings, logging, the repository and configuration.
// Any error here is a startup error.
func setup(cmd *cobra.Command, v *viper.Viper) (*app, error) {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, startupError(err)
	}
	s := config.FromViper(v)

	logger, closer, err := logging.New(logging.Options{
		Level:   s.LogLevel,
		Verbose: s.Verbose,
		Console: cmd.ErrOrStderr(),
		NoColor: !ui.ColorEnabled(os.Stderr),
		File:    s.LogFile,
	})
	if err != nil {
		return nil, startupError(err)
	}

	if err := config.CheckRef(s.Ref); err != nil {
		closer.Close()
		return nil, startupError(err)
	}

	repo, err := vcs.Open(s.Repo)
	if err != nil {
		closer.Close()
		return nil, startupError(fmt.Errorf("%s: %w", s.Repo, err))
	}
	root, err := repo.RepoRoot()
	if err != nil {
		closer.Close()
		return nil, startupError(err)
	}

	cfg, err := config.Load(s, root)
	if err != nil {
		closer.Close()
		return nil, startupError(err)
	}

	logger.Debug("configuration loaded",
		"repo", root,
		"config", cfg.Source,
		"holder", cfg.Holder,
		"jobs", cfg.Jobs,
		"date_source", cfg.DateSource)

	return &app{settings: s, cfg: cfg, repo: repo, root: root, logger: logger, closer: closer}, nil
}

// newSyncer builds the coordinator for paths given on the command line.
func (a *app) newSyncer(args []string) (*syncer.Syncer, error) {
	matcher, err := a.cfg.Matcher(a.settings.Exclude...)
	if err != nil {
		return nil, startupError(err)
	}
	paths, err := repoPaths(a.root, args)
	if err != nil {
		return nil, startupError(err)
	}

	s, err := syncer.New(a.repo, syncer.Options{
		Holder:            a.cfg.Holder,
		Resolver:          a.cfg.Resolver(),
		Ignore:            matcher,
		Jobs:              a.cfg.Jobs,
		IgnoreUncommitted: a.settings.IgnoreUncommitted,
		Check:             a.settings.Check,
		Ref:               a.settings.Ref,
		Paths:             paths,
		DateSource:        a.cfg.DateSource,
		Logger:            a.logger,
	})
	if err != nil {
		return nil, startupError(err)
	}
	return s, nil
}

// report prints sum as JSON or styled text on stdout.
func (a *app) report(w io.Writer, sum *syncer.Summary) error {
	if a.settings.JSON {
		return ui.WriteJSON(w, sum)
	}
	color := false
	if f, ok := w.(*os.File); ok {
		color = ui.ColorEnabled(f)
	}
	ui.NewPrinter(w, color, a.settings.Verbose).PrintSummary(sum)
	return nil
}

func runSync(cmd *cobra.Command, v *viper.Viper, args []string) error {
	a, err := setup(cmd, v)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.newSyncer(args)
	if err != nil {
		return err
	}

	sum, err := s.Run(cmd.Context())
	if sum == nil {
		return startupError(err)
	}
	if rerr := a.report(cmd.OutOrStdout(), sum); rerr != nil {
		return &exitError{code: exitFailed, err: rerr}
	}
	if err != nil {
		// Interrupted: the summary is partial.
		return &exitError{code: exitFailed, err: err}
	}
	if code := sum.ExitCode(); code != exitOK {
		return &exitError{code: code}
	}
	return nil
}

// repoPaths converts command-line paths to slash-separated paths relative
// to root. Paths outside the repository are rejected.
func repoPaths(root string, args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}
		if !vcs.IsSubPath(root, abs) {
			return nil, fmt.Errorf("%s is outside the repository %s", arg, root)
		}
		rel, err := vcs.RelativePath(root, abs)
		if err != nil {
			return nil, err
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out, nil
}

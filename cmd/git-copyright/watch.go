package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mschirtzinger/git-copyright/internal/daemon"
	"github.com/mschirtzinger/git-copyright/internal/syncer"
)

func newWatchCmd(v *viper.Viper) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Re-sync whenever the ref moves",
		Long: `Run once, then watch the repository refs and run again each time the
ref (HEAD by default) points at a new commit. Runs are debounced so a
rebase or a burst of commits triggers a single sync.

Stop with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, v)
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.newSyncer(args)
			if err != nil {
				return err
			}
			gitDir, err := a.repo.VCSDir()
			if err != nil {
				return startupError(err)
			}
			commonDir, err := a.repo.CommonDir()
			if err != nil {
				return startupError(err)
			}

			out := cmd.OutOrStdout()
			d, err := daemon.New(s, a.repo, gitDir, commonDir, &daemon.Config{
				Ref:              a.settings.Ref,
				DebounceInterval: debounce,
				Logger:           a.logger,
				OnRun: func(sum *syncer.Summary, _ error) {
					if sum == nil {
						return
					}
					if rerr := a.report(out, sum); rerr != nil {
						a.logger.Error("report failed", "error", rerr)
					}
				},
			})
			if err != nil {
				return startupError(err)
			}

			if err := d.Start(cmd.Context()); err != nil {
				return &exitError{code: exitFailed, err: fmt.Errorf("watch: %w", err)}
			}
			a.logger.Info("stopped", "runs", d.Runs())
			return nil
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", daemon.DefaultConfig().DebounceInterval, "Quiet period after a ref change before running")
	return cmd
}

package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/mschirtzinger/git-copyright/internal/vcs"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func init() {
	if Version != "dev" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "git-copyright %s\n", Version)

			repo, _ := cmd.Flags().GetString("repo")
			v, err := vcs.Open(repo)
			if err != nil {
				return nil
			}
			if gv, err := v.Version(); err == nil {
				fmt.Fprintf(out, "%s %s\n", v.Name(), gv)
			}
			return nil
		},
	}
}

// Command git-copyright keeps the copyright notice at the top of every
// tracked file in line with the years the file was created and last
// changed, as recorded by git.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	// Register the git backend with vcs.Open.
	_ "github.com/mschirtzinger/git-copyright/internal/vcs/git"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailed  = 1 // a file failed, was blocked, or is outdated
	exitStartup = 2 // configuration or repository error before any file was processed
)

// exitError carries a process exit code through cobra's RunE.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func startupError(err error) error {
	return &exitError{code: exitStartup, err: err}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the root command with args and maps the outcome to an
// exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}

	// Flag parsing and argument errors from cobra itself.
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitStartup
}

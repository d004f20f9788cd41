package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ExecContext runs name with args in dir and returns its stdout. A zero
// timeout means no limit beyond ctx. A command killed by the timeout
// returns an error wrapping ErrTimeout; other failures carry stderr.
func ExecContext(ctx context.Context, timeout time.Duration, dir string, name string, args ...string) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), ErrTimeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// SplitNUL splits the -z output of git commands into records, dropping
// empty ones. Records are not trimmed: paths may carry spaces.
func SplitNUL(output []byte) []string {
	var out []string
	for rec := range strings.SplitSeq(string(output), "\x00") {
		if rec != "" {
			out = append(out, rec)
		}
	}
	return out
}

// GetExitCode returns the exit status carried by err, 0 for nil and -1 if
// err did not come from a process exit.
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// RelativePath returns target relative to base.
func RelativePath(base, target string) (string, error) {
	rel, err := filepath.Rel(filepath.Clean(base), filepath.Clean(target))
	if err != nil {
		return "", fmt.Errorf("cannot determine relative path: %w", err)
	}
	return rel, nil
}

// IsSubPath reports whether target is base or lies inside it.
func IsSubPath(base, target string) bool {
	rel, err := filepath.Rel(filepath.Clean(base), filepath.Clean(target))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

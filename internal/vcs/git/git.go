// Package git provides a Git implementation of the VCS interface.
//
// This package wraps git commands to answer the history questions needed
// to date copyright notices: which files are tracked at a ref, which
// commits touched a path across renames, and whether a path has
// uncommitted changes.
package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/mschirtzinger/git-copyright/internal/vcs"
)

var _ vcs.VCS = (*Git)(nil)

// Git implements the VCS interface for git repositories.
type Git struct {
	// repoRoot is the working tree root directory path
	repoRoot string

	// vcsDir is the git directory for this worktree
	vcsDir string

	// commonDir is the git directory shared by all worktrees
	commonDir string
}

// New creates a new Git VCS instance for the given repository.
// The path should be somewhere within a git repository. The installed git
// must be at least MinVersion.
func New(path string) (*Git, error) {
	g := &Git{}

	if err := g.checkVersion(); err != nil {
		return nil, err
	}

	// Detect repository information
	if err := g.detect(path); err != nil {
		return nil, err
	}

	return g, nil
}

// Name returns the VCS type (git)
func (g *Git) Name() vcs.Type {
	return vcs.TypeGit
}

// RepoRoot returns the repository root directory path
func (g *Git) RepoRoot() (string, error) {
	if g.repoRoot == "" {
		return "", vcs.ErrNotInVCS
	}
	return g.repoRoot, nil
}

// VCSDir returns the .git directory path
func (g *Git) VCSDir() (string, error) {
	if g.vcsDir == "" {
		return "", vcs.ErrNotInVCS
	}
	return g.vcsDir, nil
}

// CommonDir returns the git directory shared across worktrees
func (g *Git) CommonDir() (string, error) {
	if g.commonDir == "" {
		return "", vcs.ErrNotInVCS
	}
	return g.commonDir, nil
}

// IsInVCS returns true if inside a git repository
func (g *Git) IsInVCS() bool {
	return g.repoRoot != ""
}

// Exec executes a raw git command
func (g *Git) Exec(ctx context.Context, args ...string) ([]byte, error) {
	output, err := g.run(ctx, args...)
	if err != nil {
		return output, fmt.Errorf("git %s failed: %w", strings.Join(args, " "), err)
	}
	return output, nil
}

// run executes git in the repository root with the default timeout.
// Pathspecs are taken literally so file names holding glob characters
// match only themselves, and quoting of non-ASCII paths is disabled so
// output paths round-trip.
func (g *Git) run(ctx context.Context, args ...string) ([]byte, error) {
	full := append([]string{"--literal-pathspecs", "-c", "core.quotePath=false"}, args...)
	return vcs.ExecContext(ctx, vcs.DefaultTimeout, g.repoRoot, "git", full...)
}

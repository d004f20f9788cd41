package syncer

import (
	"context"
	"fmt"

	"github.com/mschirtzinger/git-copyright/internal/copyright"
)

// ChangeChecker reports whether paths differ from their committed version.
// vcs.VCS satisfies it.
type ChangeChecker interface {
	HasChanges(ctx context.Context, paths ...string) (bool, error)
}

// Gate refuses writes to files with uncommitted changes, so the tool's
// edit is never mixed with someone else's in one diff.
type Gate struct {
	checker  ChangeChecker
	override bool
}

// NewGate returns a gate backed by checker. With override set the gate
// always allows the write.
func NewGate(checker ChangeChecker, override bool) *Gate {
	return &Gate{checker: checker, override: override}
}

// Check returns nil when path may be written, an error wrapping
// copyright.ErrUncommittedChanges when it has local edits, and any other
// error when the working tree could not be queried.
func (g *Gate) Check(ctx context.Context, path string) error {
	if g.override {
		return nil
	}
	dirty, err := g.checker.HasChanges(ctx, path)
	if err != nil {
		return fmt.Errorf("checking working tree: %w", err)
	}
	if dirty {
		return fmt.Errorf("%w: %s", copyright.ErrUncommittedChanges, path)
	}
	return nil
}

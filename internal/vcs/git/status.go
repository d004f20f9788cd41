package git

import (
	"context"
	"fmt"

	"github.com/mschirtzinger/git-copyright/internal/vcs"
)

// HasChanges returns true if there are uncommitted changes, staged or in
// the working tree. If paths are specified, only checks those paths.
func (g *Git) HasChanges(ctx context.Context, paths ...string) (bool, error) {
	statuses, err := g.Status(ctx, paths...)
	if err != nil {
		return false, err
	}
	for _, s := range statuses {
		if s.Dirty() {
			return true, nil
		}
	}
	return false, nil
}

// Status returns the status of files in the working directory
func (g *Git) Status(ctx context.Context, paths ...string) ([]vcs.FileStatus, error) {
	args := []string{"status", "--porcelain", "-z"}
	if len(paths) > 0 {
		args = append(args, "--")
		args = append(args, paths...)
	}

	output, err := g.run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("git status failed: %w", err)
	}

	return parseStatus(output), nil
}

// parseStatus parses "git status --porcelain -z" output. Each record is
// "XY path"; renames and copies are followed by a record holding the
// original path, which is skipped.
func parseStatus(output []byte) []vcs.FileStatus {
	var statuses []vcs.FileStatus
	records := vcs.SplitNUL(output)

	for i := 0; i < len(records); i++ {
		rec := records[i]
		if len(rec) < 4 {
			continue
		}

		// X = staged status, Y = unstaged status
		staged := rec[0:1]
		unstaged := rec[1:2]

		statuses = append(statuses, vcs.FileStatus{
			Path:       rec[3:],
			Status:     parseStatusCode(unstaged),
			StagedCode: parseStatusCode(staged),
		})

		if staged == "R" || staged == "C" {
			i++
		}
	}

	return statuses
}

// parseStatusCode converts git status code to vcs.StatusCode
func parseStatusCode(code string) vcs.StatusCode {
	switch code {
	case " ":
		return vcs.StatusUnmodified
	case "M":
		return vcs.StatusModified
	case "T":
		return vcs.StatusTypeChange
	case "A":
		return vcs.StatusAdded
	case "D":
		return vcs.StatusDeleted
	case "R":
		return vcs.StatusRenamed
	case "C":
		return vcs.StatusCopied
	case "?":
		return vcs.StatusUntracked
	case "!":
		return vcs.StatusIgnored
	case "U":
		return vcs.StatusConflict
	default:
		return vcs.StatusUnmodified
	}
}

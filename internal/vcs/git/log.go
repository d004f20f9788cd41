package git

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mschirtzinger/git-copyright/internal/vcs"
)

// recordSep starts every commit in the log output; it cannot occur in a
// hash and is vanishingly rare in paths.
const recordSep = "\x1e"

var commitHeader = regexp.MustCompile(`^([0-9a-f]{40}(?:[0-9a-f]{24})?)\t(\S+)$`)

// FileHistory returns the commits that touched path, earliest first.
//
// Renames are followed with --follow. Merge commits are diffed against
// each parent (-m) so that a merge bringing in a change to the file counts
// as a modification. Commits on the shallow boundary are flagged so the
// caller can tell a truncated history from a complete one.
func (g *Git) FileHistory(ctx context.Context, path string, opts vcs.HistoryOptions) ([]vcs.Commit, error) {
	ref := opts.Ref
	if ref == "" {
		ref = vcs.DefaultRef
	}

	dateVerb := "%cI"
	if opts.DateSource == vcs.DateAuthor {
		dateVerb = "%aI"
	}

	output, err := g.run(ctx, "log", ref,
		"--follow", "-m", "--name-only", "--no-color",
		"--format=%x1e%H%x09"+dateVerb,
		"--", path)
	if err != nil {
		return nil, fmt.Errorf("git log %s failed: %w", path, err)
	}

	commits, err := parseLog(string(output), path)
	if err != nil {
		return nil, err
	}

	shallow, err := g.shallowCommits()
	if err != nil {
		return nil, err
	}
	for i := range commits {
		commits[i].Boundary = shallow[commits[i].Hash]
	}

	return commits, nil
}

// parseLog parses the output of FileHistory's log command. Git prints the
// newest commit first; the result is reversed to earliest first. A commit
// printed once per merge parent is kept once.
func parseLog(output, path string) ([]vcs.Commit, error) {
	var commits []vcs.Commit
	seen := make(map[string]bool)

	for _, rec := range strings.Split(output, recordSep) {
		if strings.TrimSpace(rec) == "" {
			continue
		}
		lines := strings.Split(rec, "\n")
		m := commitHeader.FindStringSubmatch(strings.TrimRight(lines[0], "\r"))
		if m == nil {
			return nil, fmt.Errorf("unexpected git log record: %q", lines[0])
		}
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true

		when, err := time.Parse(time.RFC3339, m[2])
		if err != nil {
			return nil, fmt.Errorf("unexpected commit date %q: %w", m[2], err)
		}

		c := vcs.Commit{Hash: m[1], Time: when, Path: path}
		for _, l := range lines[1:] {
			if l = strings.TrimRight(l, "\r"); l != "" {
				c.Path = l
				break
			}
		}
		commits = append(commits, c)
	}

	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}
	return commits, nil
}

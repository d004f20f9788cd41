// Package history derives the year range of a file from version control
// history.
package history

import (
	"context"
	"fmt"

	"github.com/mschirtzinger/git-copyright/internal/copyright"
	"github.com/mschirtzinger/git-copyright/internal/vcs"
)

// Source lists the commits that touched a path, earliest first, following
// renames. vcs.VCS satisfies it.
type Source interface {
	FileHistory(ctx context.Context, path string, opts vcs.HistoryOptions) ([]vcs.Commit, error)
}

// Query answers year questions for paths. It holds no per-path state and
// is safe for concurrent use when its Source is.
type Query struct {
	source Source
	opts   vcs.HistoryOptions
}

// New returns a Query reading history from source with opts.
func New(source Source, opts vcs.HistoryOptions) *Query {
	return &Query{source: source, opts: opts}
}

// Commits returns the commits that touched path, earliest first.
//
// It fails with copyright.ErrHistoryUnavailable when the history cannot be
// read or no commit touches path, and with copyright.ErrHistoryTruncated
// when the earliest commit sits on a shallow clone boundary. It never
// returns an empty slice without an error.
func (q *Query) Commits(ctx context.Context, path string) ([]vcs.Commit, error) {
	commits, err := q.source.FileHistory(ctx, path, q.opts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %v", copyright.ErrHistoryUnavailable, path, err)
	}
	if len(commits) == 0 {
		return nil, fmt.Errorf("%w: %s: no commits touch this path", copyright.ErrHistoryUnavailable, path)
	}
	if commits[0].Boundary {
		return nil, fmt.Errorf("%w: %s: earliest commit %s is a shallow boundary",
			copyright.ErrHistoryTruncated, path, short(commits[0].Hash))
	}
	return commits, nil
}

// Range returns the span from the earliest to the latest commit year of
// path. Commit dates are not assumed to be monotonic, so the range is the
// minimum and maximum over all commits.
func (q *Query) Range(ctx context.Context, path string) (copyright.YearRange, error) {
	commits, err := q.Commits(ctx, path)
	if err != nil {
		return copyright.YearRange{}, err
	}

	first, last := commits[0].Time.Year(), commits[0].Time.Year()
	for _, c := range commits[1:] {
		y := c.Time.Year()
		first = min(first, y)
		last = max(last, y)
	}

	r, err := copyright.NewYearRange(first, last)
	if err != nil {
		return copyright.YearRange{}, fmt.Errorf("%w: %s: %v", copyright.ErrHistoryUnavailable, path, err)
	}
	return r, nil
}

// FirstYear returns the year path was introduced.
func (q *Query) FirstYear(ctx context.Context, path string) (int, error) {
	r, err := q.Range(ctx, path)
	if err != nil {
		return 0, err
	}
	return r.Start, nil
}

// LastYear returns the year path was last modified.
func (q *Query) LastYear(ctx context.Context, path string) (int, error) {
	r, err := q.Range(ctx, path)
	if err != nil {
		return 0, err
	}
	return r.End, nil
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

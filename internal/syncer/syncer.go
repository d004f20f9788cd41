package syncer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mschirtzinger/git-copyright/internal/copyright"
	"github.com/mschirtzinger/git-copyright/internal/history"
	"github.com/mschirtzinger/git-copyright/internal/ignore"
	"github.com/mschirtzinger/git-copyright/internal/vcs"
)

// Repository is what a run needs from version control. vcs.VCS satisfies
// it.
type Repository interface {
	RepoRoot() (string, error)
	TrackedFiles(ctx context.Context, ref string) ([]vcs.TrackedFile, error)
	FileHistory(ctx context.Context, path string, opts vcs.HistoryOptions) ([]vcs.Commit, error)
	HasChanges(ctx context.Context, paths ...string) (bool, error)
}

// Options configures a run. It is read-only once passed to New.
type Options struct {
	// Holder is the copyright holder written into every notice. Required.
	Holder string

	// Resolver maps paths to comment styles. Required.
	Resolver *copyright.Resolver

	// Ignore filters candidates. Nil ignores nothing.
	Ignore *ignore.Matcher

	// Jobs bounds the number of files processed at once. Zero means
	// runtime.NumCPU().
	Jobs int

	// IgnoreUncommitted bypasses the change-safety gate.
	IgnoreUncommitted bool

	// Check reports files that need a rewrite as Outdated without writing.
	Check bool

	// Ref is the commit whose tree and history are used. Empty means HEAD.
	Ref string

	// Paths restricts the run to files at or below these repo-relative
	// paths. Empty means the whole tree.
	Paths []string

	// DateSource selects commit dates. Empty means committer dates.
	DateSource vcs.DateSource

	// Logger receives per-file events. Nil discards them.
	Logger *slog.Logger
}

// Syncer brings the copyright notices of a repository's tracked files in
// line with their history.
//
// A run is resilient: a failure on one file is recorded in its Result and
// the run continues with the others. Run only returns an error when the
// candidate set itself cannot be determined or the context is cancelled.
type Syncer struct {
	repo    Repository
	opts    Options
	history *history.Query
	gate    *Gate
	logger  *slog.Logger
}

// New creates a Syncer over repo.
func New(repo Repository, opts Options) (*Syncer, error) {
	if strings.TrimSpace(opts.Holder) == "" {
		return nil, fmt.Errorf("%w: holder name is required", copyright.ErrConfiguration)
	}
	if opts.Resolver == nil {
		return nil, fmt.Errorf("%w: comment style resolver is required", copyright.ErrConfiguration)
	}
	if opts.Jobs < 0 {
		return nil, fmt.Errorf("%w: jobs must not be negative", copyright.ErrConfiguration)
	}
	if opts.Jobs == 0 {
		opts.Jobs = runtime.NumCPU()
	}
	if opts.Ref == "" {
		opts.Ref = vcs.DefaultRef
	}
	if opts.DateSource == "" {
		opts.DateSource = vcs.DateCommitter
	}
	opts.Paths = normalizePaths(opts.Paths)

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Syncer{
		repo:    repo,
		opts:    opts,
		history: history.New(repo, vcs.HistoryOptions{Ref: opts.Ref, DateSource: opts.DateSource}),
		gate:    NewGate(repo, opts.IgnoreUncommitted),
		logger:  logger,
	}, nil
}

// Run processes every tracked file at the configured ref and returns the
// per-file results sorted by path.
//
// When ctx is cancelled no further files are started; files already in
// progress finish (a write is never left half done) and the partial
// summary is returned together with ctx.Err().
func (s *Syncer) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()

	root, err := s.repo.RepoRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to get repository root: %w", err)
	}

	files, err := s.repo.TrackedFiles(ctx, s.opts.Ref)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracked files at %s: %w", s.opts.Ref, err)
	}
	files = s.selectPaths(files)

	s.logger.Debug("starting run",
		"root", root,
		"ref", s.opts.Ref,
		"files", len(files),
		"jobs", s.opts.Jobs,
		"check", s.opts.Check)

	results := make(chan Result)
	collected := make(chan *Summary, 1)
	go func() {
		sum := &Summary{Ref: s.opts.Ref, Check: s.opts.Check}
		for r := range results {
			sum.Add(r)
		}
		collected <- sum
	}()

	g := &errgroup.Group{}
	g.SetLimit(s.opts.Jobs)
	for _, f := range files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			r := s.processFile(ctx, root, f.Path)
			s.log(r)
			results <- r
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	sum := <-collected
	sort.Slice(sum.Results, func(i, j int) bool {
		return sum.Results[i].Path < sum.Results[j].Path
	})
	sum.Duration = time.Since(start)

	s.logger.Info("run complete",
		"files", sum.Total(),
		"updated", sum.Count(Updated),
		"unchanged", sum.Count(Unchanged),
		"failed", sum.Count(Failed),
		"duration", sum.Duration.Round(time.Millisecond))

	return sum, ctx.Err()
}

// processFile runs one file through resolve, history, scan, merge, gate
// and write. It never returns an error; failures become the Result.
func (s *Syncer) processFile(ctx context.Context, root, path string) Result {
	res := Result{Path: path}

	if s.opts.Ignore.Match(path) {
		return done(res, SkippedIgnored, "matches an ignore pattern")
	}

	full := filepath.Join(root, filepath.FromSlash(path))
	info, err := os.Lstat(full)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return done(res, SkippedIgnored, "missing from the working tree")
	case err != nil:
		return fail(res, err)
	case !info.Mode().IsRegular():
		return done(res, SkippedUnsupported, "not a regular file in the working tree")
	}

	style := s.opts.Resolver.Resolve(path)
	if !style.Supported() {
		return done(res, SkippedUnsupported, "no comment style for this file type")
	}

	content, err := os.ReadFile(full)
	if err != nil {
		return fail(res, fmt.Errorf("reading file: %w", err))
	}
	if copyright.IsBinary(content) {
		return done(res, SkippedUnsupported, "binary content")
	}

	rng, err := s.history.Range(ctx, path)
	if err != nil {
		return fail(res, err)
	}

	plan, err := copyright.Plan(content, style, rng, s.opts.Holder)
	if err != nil {
		if errors.Is(err, copyright.ErrUnsupportedFileType) {
			return done(res, SkippedUnsupported, err.Error())
		}
		return fail(res, err)
	}
	res.Range = plan.Range
	res.Previous = plan.Previous

	if !plan.Changed {
		return done(res, Unchanged, "notice already correct")
	}

	if s.opts.Check {
		return done(res, Outdated, "notice should be "+plan.Range.String())
	}

	if err := s.gate.Check(ctx, path); err != nil {
		if errors.Is(err, copyright.ErrUncommittedChanges) {
			res.Err = err
			return done(res, SkippedUncommitted, "file has uncommitted changes")
		}
		return fail(res, err)
	}

	// Re-read right before writing so an edit made since the plan is not
	// overwritten.
	current, err := os.ReadFile(full)
	if err != nil {
		return fail(res, fmt.Errorf("%w: %v", copyright.ErrWriteFailure, err))
	}
	if !bytes.Equal(current, content) {
		res.Err = fmt.Errorf("%w: %s changed during the run", copyright.ErrUncommittedChanges, path)
		return done(res, SkippedUncommitted, "file changed during the run")
	}

	outcome, err := copyright.Write(full, content, plan.Content)
	if err != nil {
		return fail(res, err)
	}
	if outcome == copyright.AlreadyCorrect {
		return done(res, Unchanged, "notice already correct")
	}
	res.Outcome = Updated
	return res
}

func (s *Syncer) log(r Result) {
	attrs := []any{"path", r.Path, "outcome", r.Outcome.String()}
	if !r.Range.IsZero() {
		attrs = append(attrs, "range", r.Range.String())
	}

	switch r.Outcome {
	case Updated:
		s.logger.Info("updated notice", attrs...)
	case Failed:
		s.logger.Error("failed to process file", append(attrs, "error", r.Err)...)
	case SkippedUncommitted, Outdated:
		s.logger.Warn(r.Reason, attrs...)
	default:
		s.logger.Debug(r.Reason, attrs...)
	}
}

// selectPaths keeps the files at or below one of the requested paths.
func (s *Syncer) selectPaths(files []vcs.TrackedFile) []vcs.TrackedFile {
	if len(s.opts.Paths) == 0 {
		return files
	}
	var out []vcs.TrackedFile
	for _, f := range files {
		for _, p := range s.opts.Paths {
			if f.Path == p || strings.HasPrefix(f.Path, p+"/") {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// normalizePaths cleans repo-relative paths. A path naming the root
// selects everything, so the filter is dropped.
func normalizePaths(paths []string) []string {
	var out []string
	for _, p := range paths {
		p = strings.Trim(filepath.ToSlash(filepath.Clean(p)), "/")
		if p == "." || p == "" {
			return nil
		}
		out = append(out, p)
	}
	return out
}

func done(r Result, o Outcome, reason string) Result {
	r.Outcome = o
	r.Reason = reason
	return r
}

func fail(r Result, err error) Result {
	r.Outcome = Failed
	r.Err = err
	r.Reason = err.Error()
	return r
}

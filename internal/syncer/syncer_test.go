package syncer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mschirtzinger/git-copyright/internal/copyright"
	"github.com/mschirtzinger/git-copyright/internal/ignore"
	"github.com/mschirtzinger/git-copyright/internal/vcs"
)

// fakeRepo is an in-memory Repository over files in a temp dir.
type fakeRepo struct {
	root    string
	tracked []vcs.TrackedFile
	history map[string][]vcs.Commit
	dirty   map[string]bool

	mu           sync.Mutex
	historyCalls map[string]int
	statusCalls  int
}

func newFakeRepo(t *testing.T) *fakeRepo {
	t.Helper()
	return &fakeRepo{
		root:         t.TempDir(),
		history:      make(map[string][]vcs.Commit),
		dirty:        make(map[string]bool),
		historyCalls: make(map[string]int),
	}
}

// add writes path with content and records commits in the given years.
func (r *fakeRepo) add(t *testing.T, path, content string, years ...int) {
	t.Helper()
	full := filepath.Join(r.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	r.tracked = append(r.tracked, vcs.TrackedFile{Path: path, Mode: "100644"})
	for i, y := range years {
		r.history[path] = append(r.history[path], vcs.Commit{
			Hash: strings.Repeat(string(rune('a'+i)), 40),
			Time: time.Date(y, time.June, 1, 12, 0, 0, 0, time.UTC),
			Path: path,
		})
	}
}

func (r *fakeRepo) read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(r.root, filepath.FromSlash(path)))
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

func (r *fakeRepo) RepoRoot() (string, error) { return r.root, nil }

func (r *fakeRepo) TrackedFiles(ctx context.Context, ref string) ([]vcs.TrackedFile, error) {
	if ref == "missing" {
		return nil, vcs.ErrRefNotFound
	}
	return r.tracked, nil
}

func (r *fakeRepo) FileHistory(ctx context.Context, path string, opts vcs.HistoryOptions) ([]vcs.Commit, error) {
	r.mu.Lock()
	r.historyCalls[path]++
	r.mu.Unlock()
	return r.history[path], nil
}

func (r *fakeRepo) HasChanges(ctx context.Context, paths ...string) (bool, error) {
	r.mu.Lock()
	r.statusCalls++
	r.mu.Unlock()
	for _, p := range paths {
		if r.dirty[p] {
			return true, nil
		}
	}
	return false, nil
}

func testResolver() *copyright.Resolver {
	return copyright.NewResolver(map[string]copyright.CommentStyle{
		"py":   copyright.LineStyle("#"),
		"go":   copyright.LineStyle("//"),
		"css":  copyright.BlockStyle("/*", "*/"),
		"json": {},
	})
}

func newTestSyncer(t *testing.T, repo *fakeRepo, mutate func(*Options)) *Syncer {
	t.Helper()
	opts := Options{Holder: "Acme Ltd.", Resolver: testResolver(), Jobs: 4}
	if mutate != nil {
		mutate(&opts)
	}
	s, err := New(repo, opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func run(t *testing.T, s *Syncer) *Summary {
	t.Helper()
	sum, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return sum
}

func resultFor(t *testing.T, sum *Summary, path string) Result {
	t.Helper()
	for _, r := range sum.Results {
		if r.Path == path {
			return r
		}
	}
	t.Fatalf("No result for %s", path)
	return Result{}
}

func TestNewValidation(t *testing.T) {
	repo := newFakeRepo(t)
	tests := []struct {
		name string
		opts Options
	}{
		{"no holder", Options{Resolver: testResolver()}},
		{"blank holder", Options{Holder: "  ", Resolver: testResolver()}},
		{"no resolver", Options{Holder: "Acme"}},
		{"negative jobs", Options{Holder: "Acme", Resolver: testResolver(), Jobs: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(repo, tt.opts); !errors.Is(err, copyright.ErrConfiguration) {
				t.Errorf("Expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestRunScenario(t *testing.T) {
	repo := newFakeRepo(t)
	repo.add(t, "app.py", "print('hi')\n", 2019, 2020, 2022)

	s := newTestSyncer(t, repo, nil)

	sum := run(t, s)
	r := resultFor(t, sum, "app.py")
	if r.Outcome != Updated {
		t.Fatalf("Expected Updated, got %v (%s)", r.Outcome, r.Reason)
	}
	want := "# Copyright (c) 2019-2022 Acme Ltd.\n\nprint('hi')\n"
	if got := repo.read(t, "app.py"); got != want {
		t.Errorf("Unexpected content:\n%q\nwant:\n%q", got, want)
	}
	if sum.ExitCode() != 0 {
		t.Errorf("Expected exit code 0, got %d", sum.ExitCode())
	}

	// Second run is a no-op.
	sum = run(t, s)
	if r := resultFor(t, sum, "app.py"); r.Outcome != Unchanged {
		t.Errorf("Expected Unchanged on second run, got %v", r.Outcome)
	}

	// A 2023 commit widens the range and replaces only the notice.
	repo.history["app.py"] = append(repo.history["app.py"], vcs.Commit{
		Hash: strings.Repeat("f", 40),
		Time: time.Date(2023, time.March, 3, 0, 0, 0, 0, time.UTC),
		Path: "app.py",
	})
	sum = run(t, s)
	if r := resultFor(t, sum, "app.py"); r.Outcome != Updated {
		t.Fatalf("Expected Updated after new commit, got %v", r.Outcome)
	}
	want = "# Copyright (c) 2019-2023 Acme Ltd.\n\nprint('hi')\n"
	if got := repo.read(t, "app.py"); got != want {
		t.Errorf("Unexpected content after 2023:\n%q\nwant:\n%q", got, want)
	}
}

func TestRunOutcomes(t *testing.T) {
	repo := newFakeRepo(t)
	repo.add(t, "ok.go", "package ok\n", 2021)
	repo.add(t, "done.go", "// Copyright (c) 2021 Acme Ltd.\n\npackage done\n", 2021)
	repo.add(t, "vendor/lib/lib.go", "// Copyright 2001 Someone\npackage lib\n", 2020)
	repo.add(t, "data.json", "{}\n", 2020)
	repo.add(t, "README", "hello\n", 2020)
	repo.add(t, "untracked_history.py", "x = 1\n")
	repo.add(t, "dirty.py", "x = 2\n", 2020)
	repo.add(t, "image.py", "PNG\x00\x00data", 2020)
	repo.add(t, "twice.py", "# Copyright 2019 A\n# Copyright 2020 B\nx = 3\n", 2021)
	repo.tracked = append(repo.tracked, vcs.TrackedFile{Path: "gone.py", Mode: "100644"})
	repo.dirty["dirty.py"] = true

	m, err := ignore.New(nil, []string{"vendor"})
	if err != nil {
		t.Fatalf("ignore.New failed: %v", err)
	}
	s := newTestSyncer(t, repo, func(o *Options) { o.Ignore = m })
	sum := run(t, s)

	tests := []struct {
		path    string
		outcome Outcome
		errIs   error
	}{
		{"ok.go", Updated, nil},
		{"done.go", Unchanged, nil},
		{"vendor/lib/lib.go", SkippedIgnored, nil},
		{"gone.py", SkippedIgnored, nil},
		{"data.json", SkippedUnsupported, nil},
		{"README", SkippedUnsupported, nil},
		{"image.py", SkippedUnsupported, nil},
		{"untracked_history.py", Failed, copyright.ErrHistoryUnavailable},
		{"dirty.py", SkippedUncommitted, copyright.ErrUncommittedChanges},
		{"twice.py", Failed, copyright.ErrAmbiguousNotice},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r := resultFor(t, sum, tt.path)
			if r.Outcome != tt.outcome {
				t.Errorf("Expected %v, got %v (%s)", tt.outcome, r.Outcome, r.Reason)
			}
			if tt.errIs != nil && !errors.Is(r.Err, tt.errIs) {
				t.Errorf("Expected error %v, got %v", tt.errIs, r.Err)
			}
			if r.Outcome != Updated && r.Reason == "" {
				t.Error("Expected a reason for every non-updated outcome")
			}
		})
	}

	if got := repo.read(t, "vendor/lib/lib.go"); got != "// Copyright 2001 Someone\npackage lib\n" {
		t.Errorf("Ignored file was modified: %q", got)
	}
	if got := repo.read(t, "dirty.py"); got != "x = 2\n" {
		t.Errorf("Dirty file was modified: %q", got)
	}
	if repo.historyCalls["vendor/lib/lib.go"] != 0 || repo.historyCalls["data.json"] != 0 {
		t.Error("History must not be queried for skipped files")
	}
	if sum.ExitCode() != 1 {
		t.Errorf("Expected exit code 1, got %d", sum.ExitCode())
	}
	if sum.Total() != len(repo.tracked) {
		t.Errorf("Expected %d results, got %d", len(repo.tracked), sum.Total())
	}
	for i := 1; i < len(sum.Results); i++ {
		if sum.Results[i-1].Path > sum.Results[i].Path {
			t.Fatalf("Results not sorted: %s before %s", sum.Results[i-1].Path, sum.Results[i].Path)
		}
	}
}

func TestRunIgnoreUncommitted(t *testing.T) {
	repo := newFakeRepo(t)
	repo.add(t, "dirty.py", "x = 2\n", 2020)
	repo.dirty["dirty.py"] = true

	s := newTestSyncer(t, repo, func(o *Options) { o.IgnoreUncommitted = true })
	sum := run(t, s)

	if r := resultFor(t, sum, "dirty.py"); r.Outcome != Updated {
		t.Fatalf("Expected Updated with override, got %v", r.Outcome)
	}
	if repo.statusCalls != 0 {
		t.Errorf("Expected the gate to be bypassed, got %d status calls", repo.statusCalls)
	}
	if sum.ExitCode() != 0 {
		t.Errorf("Expected exit code 0, got %d", sum.ExitCode())
	}
}

func TestRunGateOnlyWhenWriting(t *testing.T) {
	repo := newFakeRepo(t)
	repo.add(t, "done.py", "# Copyright (c) 2020 Acme Ltd.\n\nx = 1\n", 2020)
	repo.dirty["done.py"] = true

	sum := run(t, newTestSyncer(t, repo, nil))
	if r := resultFor(t, sum, "done.py"); r.Outcome != Unchanged {
		t.Errorf("Expected Unchanged, got %v", r.Outcome)
	}
	if repo.statusCalls != 0 {
		t.Errorf("Expected no status query for correct file, got %d", repo.statusCalls)
	}
}

func TestRunCheckMode(t *testing.T) {
	repo := newFakeRepo(t)
	repo.add(t, "a.py", "x = 1\n", 2020, 2021)
	repo.add(t, "b.py", "# Copyright (c) 2020 Acme Ltd.\n\ny = 1\n", 2020)

	sum := run(t, newTestSyncer(t, repo, func(o *Options) { o.Check = true }))

	r := resultFor(t, sum, "a.py")
	if r.Outcome != Outdated {
		t.Errorf("Expected Outdated, got %v", r.Outcome)
	}
	if r.Range.String() != "2020-2021" {
		t.Errorf("Expected range 2020-2021, got %s", r.Range)
	}
	if got := repo.read(t, "a.py"); got != "x = 1\n" {
		t.Errorf("Check mode must not write, got %q", got)
	}
	if resultFor(t, sum, "b.py").Outcome != Unchanged {
		t.Error("Expected b.py Unchanged")
	}
	if sum.ExitCode() != 1 {
		t.Errorf("Expected exit code 1 in check mode with outdated files, got %d", sum.ExitCode())
	}
}

func TestRunKeepsEarlierNoticeYear(t *testing.T) {
	repo := newFakeRepo(t)
	repo.add(t, "old.go", "// Copyright (c) 2015-2016 Old Corp\n\npackage old\n", 2020, 2021)

	sum := run(t, newTestSyncer(t, repo, nil))
	r := resultFor(t, sum, "old.go")
	if r.Outcome != Updated {
		t.Fatalf("Expected Updated, got %v", r.Outcome)
	}
	if r.Previous == nil || r.Previous.String() != "2015-2016" {
		t.Errorf("Expected previous range 2015-2016, got %v", r.Previous)
	}
	want := "// Copyright (c) 2015-2021 Acme Ltd.\n\npackage old\n"
	if got := repo.read(t, "old.go"); got != want {
		t.Errorf("Unexpected content:\n%q\nwant:\n%q", got, want)
	}
}

func TestRunPaths(t *testing.T) {
	repo := newFakeRepo(t)
	repo.add(t, "cmd/main.go", "package main\n", 2020)
	repo.add(t, "cmdline/x.go", "package x\n", 2020)
	repo.add(t, "pkg/a.go", "package a\n", 2020)

	sum := run(t, newTestSyncer(t, repo, func(o *Options) { o.Paths = []string{"cmd/", "./pkg/a.go"} }))
	if sum.Total() != 2 {
		t.Fatalf("Expected 2 results, got %d: %+v", sum.Total(), sum.Results)
	}
	resultFor(t, sum, "cmd/main.go")
	resultFor(t, sum, "pkg/a.go")

	sum = run(t, newTestSyncer(t, repo, func(o *Options) { o.Paths = []string{"."} }))
	if sum.Total() != 3 {
		t.Errorf("Expected '.' to select everything, got %d", sum.Total())
	}
}

func TestRunRefError(t *testing.T) {
	repo := newFakeRepo(t)
	s := newTestSyncer(t, repo, func(o *Options) { o.Ref = "missing" })
	if _, err := s.Run(context.Background()); !errors.Is(err, vcs.ErrRefNotFound) {
		t.Errorf("Expected ErrRefNotFound, got %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	repo := newFakeRepo(t)
	repo.add(t, "a.py", "x = 1\n", 2020)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := newTestSyncer(t, repo, nil).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if sum == nil || sum.Total() != 0 {
		t.Errorf("Expected empty partial summary, got %+v", sum)
	}
	if got := repo.read(t, "a.py"); got != "x = 1\n" {
		t.Errorf("Cancelled run must not write, got %q", got)
	}
}

func TestRunManyFilesConcurrently(t *testing.T) {
	repo := newFakeRepo(t)
	for i := 0; i < 50; i++ {
		repo.add(t, filepath.ToSlash(filepath.Join("pkg", string(rune('a'+i%26))+strings.Repeat("x", i/26)+".go")), "package pkg\n", 2018, 2024)
	}

	sum := run(t, newTestSyncer(t, repo, func(o *Options) { o.Jobs = 8 }))
	if sum.Count(Updated) != 50 {
		t.Errorf("Expected 50 updated, got %d", sum.Count(Updated))
	}
	sum = run(t, newTestSyncer(t, repo, func(o *Options) { o.Jobs = 8 }))
	if sum.Count(Unchanged) != 50 {
		t.Errorf("Expected 50 unchanged on second run, got %d", sum.Count(Unchanged))
	}
}

func TestSummaryExitCode(t *testing.T) {
	tests := []struct {
		outcomes []Outcome
		want     int
	}{
		{nil, 0},
		{[]Outcome{Updated, Unchanged, SkippedIgnored, SkippedUnsupported}, 0},
		{[]Outcome{Updated, Failed}, 1},
		{[]Outcome{SkippedUncommitted}, 1},
		{[]Outcome{Outdated}, 1},
	}
	for _, tt := range tests {
		sum := &Summary{}
		for _, o := range tt.outcomes {
			sum.Add(Result{Outcome: o})
		}
		if got := sum.ExitCode(); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.outcomes, got, tt.want)
		}
	}
}

func TestOutcomeString(t *testing.T) {
	seen := make(map[string]bool)
	for _, o := range Outcomes {
		s := o.String()
		if s == "unknown" || seen[s] {
			t.Errorf("Outcome %d has bad or duplicate name %q", o, s)
		}
		seen[s] = true
	}
	if Outcome(99).String() != "unknown" {
		t.Error("Expected unknown for out-of-range outcome")
	}
}

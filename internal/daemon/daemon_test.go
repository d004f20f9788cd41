package daemon

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mschirtzinger/git-copyright/internal/syncer"
)

type countingRunner struct {
	mu   sync.Mutex
	runs int
}

func (r *countingRunner) Run(ctx context.Context) (*syncer.Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
	return &syncer.Summary{}, nil
}

func (r *countingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}

type fakeRefs struct {
	mu     sync.Mutex
	commit string
	err    error
}

func (f *fakeRefs) ResolveRef(ctx context.Context, ref string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commit, f.err
}

func (f *fakeRefs) set(commit string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commit = commit
}

func TestNew(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		runner  Runner
		refs    RefResolver
		gitDir  string
		wantErr bool
	}{
		{"valid", &countingRunner{}, &fakeRefs{}, dir, false},
		{"nil runner", nil, &fakeRefs{}, dir, true},
		{"nil refs", &countingRunner{}, nil, dir, true},
		{"empty dir", &countingRunner{}, &fakeRefs{}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(tt.runner, tt.refs, tt.gitDir, tt.gitDir, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if d != nil {
				if d.config.DebounceInterval != 500*time.Millisecond {
					t.Errorf("Expected default debounce, got %v", d.config.DebounceInterval)
				}
				_ = d.watcher.Stop()
			}
		})
	}
}

func TestRunIfMoved(t *testing.T) {
	runner := &countingRunner{}
	refs := &fakeRefs{commit: "aaa"}
	var reported int
	d, err := New(runner, refs, t.TempDir(), t.TempDir(), &Config{
		OnRun: func(*syncer.Summary, error) { reported++ },
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer d.watcher.Stop()

	ctx := context.Background()
	d.runIfMoved(ctx, true)
	d.runIfMoved(ctx, false)
	if runner.count() != 1 {
		t.Errorf("Expected 1 run while ref is unchanged, got %d", runner.count())
	}

	refs.set("bbb")
	d.runIfMoved(ctx, false)
	if runner.count() != 2 {
		t.Errorf("Expected a run after ref moved, got %d", runner.count())
	}
	if reported != 2 || d.Runs() != 2 {
		t.Errorf("Expected 2 reported runs, got %d / %d", reported, d.Runs())
	}

	refs.mu.Lock()
	refs.err = errors.New("ref locked")
	refs.mu.Unlock()
	d.runIfMoved(ctx, false)
	if runner.count() != 2 {
		t.Error("Expected no run while the ref cannot be resolved")
	}
}

func TestDaemonRunsOnCommit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	repo := t.TempDir()
	git := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = repo
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}
	git("init", "-q")
	git("config", "user.name", "Test User")
	git("config", "user.email", "test@example.com")
	git("config", "commit.gpgsign", "false")
	if err := os.WriteFile(filepath.Join(repo, "a.go"), []byte("package a\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	git("add", "a.go")
	git("commit", "-q", "-m", "first")

	runner := &countingRunner{}
	commits := 0
	gitDir := filepath.Join(repo, ".git")
	d, err := New(runner, resolverFunc(func() string {
		commits++
		return string(rune('a' + commits))
	}), gitDir, gitDir, &Config{DebounceInterval: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Start(ctx) }()

	waitFor(t, func() bool { return runner.count() >= 1 })

	// Give the watcher time to register before moving HEAD.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(repo, "a.go"), []byte("package a\n\nvar X = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	git("commit", "-q", "-am", "second")

	waitFor(t, func() bool { return runner.count() >= 2 })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Daemon did not stop")
	}
}

// resolverFunc returns a fresh commit id on every call.
type resolverFunc func() string

func (f resolverFunc) ResolveRef(ctx context.Context, ref string) (string, error) {
	return f(), nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("Timed out waiting for condition")
}

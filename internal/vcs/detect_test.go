package vcs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectGitDir(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	result, err := Detect(sub)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if result.Type != TypeGit {
		t.Errorf("Type = %s, want git", result.Type)
	}
	if result.Root != root {
		t.Errorf("Root = %s, want %s", result.Root, root)
	}
	if result.GitDir != filepath.Join(root, ".git") {
		t.Errorf("GitDir = %s, want %s", result.GitDir, filepath.Join(root, ".git"))
	}
	if result.Worktree {
		t.Error("Worktree = true for a regular repository")
	}
}

func TestDetectWorktree(t *testing.T) {
	mainRepo := t.TempDir()
	wtGitDir := filepath.Join(mainRepo, ".git", "worktrees", "feature")
	if err := os.MkdirAll(wtGitDir, 0o755); err != nil {
		t.Fatal(err)
	}

	wt := t.TempDir()
	if err := os.WriteFile(filepath.Join(wt, ".git"), []byte("gitdir: "+wtGitDir+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := Detect(wt)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !result.Worktree {
		t.Error("Worktree = false, want true")
	}
	if result.Root != wt {
		t.Errorf("Root = %s, want %s", result.Root, wt)
	}
	if result.GitDir != wtGitDir {
		t.Errorf("GitDir = %s, want %s", result.GitDir, wtGitDir)
	}
}

func TestDetectNotInVCS(t *testing.T) {
	dir := t.TempDir()
	if _, err := Detect(filepath.Dir(dir)); err == nil {
		t.Skip("temp dir is inside a repository")
	}
	if _, err := Detect(dir); !errors.Is(err, ErrNotInVCS) {
		t.Errorf("Detect error = %v, want ErrNotInVCS", err)
	}
}

func TestDetectRelativeGitFile(t *testing.T) {
	wt := t.TempDir()
	if err := os.WriteFile(filepath.Join(wt, ".git"), []byte("gitdir: ../meta/worktrees/x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := Detect(wt)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	want := filepath.Join(filepath.Dir(wt), "meta", "worktrees", "x")
	if result.GitDir != want {
		t.Errorf("GitDir = %s, want %s", result.GitDir, want)
	}
}

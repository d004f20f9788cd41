package vcs

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Location is where Detect found a repository.
type Location struct {
	Type Type

	// Root is the working tree root
	Root string

	// GitDir is the metadata directory. For a linked worktree it is the
	// per-worktree directory under the main repository's .git/worktrees.
	GitDir string

	// Worktree is true for a linked worktree, whose .git is a file
	Worktree bool
}

// Detect walks up from path until it finds a .git directory or file.
//
// A jj repository colocated with git carries a .git directory and is read
// through git. Anything else is ErrNotInVCS.
func Detect(path string) (*Location, error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	for {
		dotGit := filepath.Join(dir, ".git")
		if info, err := os.Stat(dotGit); err == nil {
			loc := &Location{Type: TypeGit, Root: dir, GitDir: dotGit}
			if info.Mode().IsRegular() {
				loc.Worktree = true
				if gitDir, ok := readGitFile(dir, dotGit); ok {
					loc.GitDir = gitDir
				}
			}
			return loc, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, ErrNotInVCS
		}
		dir = parent
	}
}

// readGitFile returns the directory named by a worktree's .git file:
//
//	gitdir: /path/to/main/.git/worktrees/name
func readGitFile(root, file string) (string, bool) {
	content, err := os.ReadFile(file)
	if err != nil {
		return "", false
	}
	gitDir, ok := strings.CutPrefix(strings.TrimSpace(string(content)), "gitdir: ")
	if !ok {
		return "", false
	}
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(root, gitDir)
	}
	return filepath.Clean(gitDir), true
}

func binaryAvailable(t Type) bool {
	_, err := exec.LookPath(string(t))
	return err == nil
}

// IsGitAvailable reports whether git is on PATH.
func IsGitAvailable() bool {
	return binaryAvailable(TypeGit)
}

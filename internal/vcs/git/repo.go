package git

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mschirtzinger/git-copyright/internal/vcs"
)

// detect populates git repository information
func (g *Git) detect(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	// Use git rev-parse to get all info in one call
	cmd := exec.Command("git", "rev-parse", "--git-dir", "--git-common-dir", "--show-toplevel")
	cmd.Dir = absPath

	output, err := cmd.Output()
	if err != nil {
		return vcs.ErrNotInVCS
	}

	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) < 3 {
		// Bare repositories have no toplevel and no working tree to update.
		return fmt.Errorf("%w: no working tree at %s", vcs.ErrNotInVCS, absPath)
	}

	gitDir := strings.TrimSpace(lines[0])
	commonDir := strings.TrimSpace(lines[1])
	repoRoot := strings.TrimSpace(lines[2])

	// Convert to absolute paths
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(absPath, gitDir)
	}
	if !filepath.IsAbs(commonDir) {
		commonDir = filepath.Join(absPath, commonDir)
	}

	g.vcsDir = filepath.Clean(gitDir)
	g.commonDir = filepath.Clean(commonDir)
	g.repoRoot = normalizeRepoRoot(repoRoot)
	return nil
}

// normalizeRepoRoot normalizes the repository root path
// Resolves symlinks and canonicalizes case on case-insensitive filesystems
func normalizeRepoRoot(path string) string {
	// Normalize Windows paths
	path = filepath.FromSlash(path)

	// Resolve symlinks
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}

	return path
}

// IsShallow returns true if the repository is a shallow clone
func (g *Git) IsShallow() bool {
	info, err := os.Stat(g.shallowFile())
	return err == nil && info.Size() > 0
}

func (g *Git) shallowFile() string {
	return filepath.Join(g.commonDir, "shallow")
}

// shallowCommits returns the set of shallow boundary commits. The file is
// read on every call since a fetch can deepen the clone between runs.
func (g *Git) shallowCommits() (map[string]bool, error) {
	f, err := os.Open(g.shallowFile())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read shallow file: %w", err)
	}
	defer f.Close()

	set := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if h := strings.TrimSpace(scanner.Text()); h != "" {
			set[h] = true
		}
	}
	return set, scanner.Err()
}

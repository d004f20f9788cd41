package git

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mschirtzinger/git-copyright/internal/vcs"
)

// Regular file modes as recorded in git trees. Symlinks (120000) and
// submodules (160000) are never candidates.
const (
	modeRegular    = "100644"
	modeExecutable = "100755"
)

// TrackedFiles returns the regular files in the tree of ref.
func (g *Git) TrackedFiles(ctx context.Context, ref string) ([]vcs.TrackedFile, error) {
	if ref == "" {
		ref = vcs.DefaultRef
	}

	output, err := g.run(ctx, "ls-tree", "-r", "-z", "--full-tree", ref)
	if err != nil {
		return nil, fmt.Errorf("git ls-tree %s failed: %w", ref, err)
	}

	files, err := parseTree(output)
	if err != nil {
		return nil, err
	}
	return files, nil
}

// parseTree parses "git ls-tree -z" records of the form
// "<mode> SP <type> SP <object> TAB <path>".
func parseTree(output []byte) ([]vcs.TrackedFile, error) {
	var files []vcs.TrackedFile
	seen := make(map[string]bool)

	for _, rec := range vcs.SplitNUL(output) {
		meta, path, ok := strings.Cut(rec, "\t")
		if !ok {
			return nil, fmt.Errorf("unexpected ls-tree record: %q", rec)
		}
		fields := strings.Fields(meta)
		if len(fields) != 3 {
			return nil, fmt.Errorf("unexpected ls-tree record: %q", rec)
		}
		mode, kind := fields[0], fields[1]
		if kind != "blob" || (mode != modeRegular && mode != modeExecutable) {
			continue
		}
		if seen[path] {
			continue
		}
		seen[path] = true
		files = append(files, vcs.TrackedFile{Path: path, Mode: mode})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

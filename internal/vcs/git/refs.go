package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/mschirtzinger/git-copyright/internal/vcs"
)

// ResolveRef returns the commit hash for the given reference
func (g *Git) ResolveRef(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		ref = vcs.DefaultRef
	}

	output, err := g.run(ctx, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	if err != nil {
		if vcs.GetExitCode(err) == 1 {
			return "", fmt.Errorf("%w: %s", vcs.ErrRefNotFound, ref)
		}
		return "", fmt.Errorf("failed to resolve ref %s: %w", ref, err)
	}

	return strings.TrimSpace(string(output)), nil
}

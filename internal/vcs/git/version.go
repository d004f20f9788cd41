package git

import (
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/mschirtzinger/git-copyright/internal/vcs"
)

// MinVersion is the oldest git release whose log --follow and
// status --porcelain -z behaviour the history queries rely on.
const MinVersion = "v2.15.0"

var versionNumber = regexp.MustCompile(`^(\d+)\.(\d+)(?:\.(\d+))?`)

// Version returns the git version string
func (g *Git) Version() (string, error) {
	cmd := exec.Command("git", "--version")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get git version: %w", err)
	}

	// Output format: "git version 2.39.0"
	version := strings.TrimSpace(string(output))
	version = strings.TrimPrefix(version, "git version ")

	return version, nil
}

// checkVersion fails with vcs.ErrUnsupportedVersion when git is too old.
func (g *Git) checkVersion() error {
	raw, err := g.Version()
	if err != nil {
		return fmt.Errorf("%w: %v", vcs.ErrVCSNotAvailable, err)
	}
	v, ok := canonicalVersion(raw)
	if !ok {
		// Unparseable vendor strings are let through.
		return nil
	}
	if semver.Compare(v, MinVersion) < 0 {
		return fmt.Errorf("%w: git %s, need %s or newer", vcs.ErrUnsupportedVersion, raw, strings.TrimPrefix(MinVersion, "v"))
	}
	return nil
}

// canonicalVersion turns "2.39.2 (Apple Git-143)" or "2.41.0.windows.1"
// into the semver form "v2.39.2".
func canonicalVersion(raw string) (string, bool) {
	m := versionNumber.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", false
	}
	patch := m[3]
	if patch == "" {
		patch = "0"
	}
	v := "v" + m[1] + "." + m[2] + "." + patch
	if !semver.IsValid(v) {
		return "", false
	}
	return v, true
}

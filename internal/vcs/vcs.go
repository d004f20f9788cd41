// Package vcs provides the version control queries needed to derive
// copyright years from history.
//
// The package abstracts the VCS binary behind a small read-mostly
// interface: enumerate the files tracked at a ref, list the commits that
// touched a path (following renames), and report whether a path has
// uncommitted changes. Implementations register themselves with the
// registry from their init functions and are opened with Open.
//
// # Usage
//
//	v, err := vcs.Open(repoPath)
//	if err != nil {
//	    return err
//	}
//
//	files, err := v.TrackedFiles(ctx, "HEAD")
//	commits, err := v.FileHistory(ctx, "cmd/main.go", vcs.HistoryOptions{})
//
// # Implementations
//
//   - internal/vcs/git: shells out to the git binary
package vcs

import (
	"context"
	"time"
)

// Type represents the VCS backend type
type Type string

const (
	// TypeGit indicates a git repository
	TypeGit Type = "git"
)

// String returns the string representation of the VCS type
func (t Type) String() string {
	return string(t)
}

// VCS defines the interface for version control queries.
type VCS interface {
	// ===================
	// Identity
	// ===================

	// Name returns the VCS type
	Name() Type

	// Version returns the VCS binary version string
	Version() (string, error)

	// ===================
	// Repository Information
	// ===================

	// RepoRoot returns the working tree root directory path.
	RepoRoot() (string, error)

	// VCSDir returns the VCS metadata directory path.
	// For worktrees this is the per-worktree git dir.
	VCSDir() (string, error)

	// CommonDir returns the metadata directory shared by all worktrees.
	// Refs and the shallow file live here.
	CommonDir() (string, error)

	// IsInVCS returns true if the repository was detected
	IsInVCS() bool

	// IsShallow returns true if the repository is a shallow clone
	IsShallow() bool

	// ===================
	// History
	// ===================

	// TrackedFiles returns the regular files tracked at ref, relative to
	// the repository root, sorted by path.
	TrackedFiles(ctx context.Context, ref string) ([]TrackedFile, error)

	// FileHistory returns the commits that touched path, earliest first,
	// following renames. An untracked path yields an empty slice.
	FileHistory(ctx context.Context, path string, opts HistoryOptions) ([]Commit, error)

	// ResolveRef returns the commit hash for ref.
	ResolveRef(ctx context.Context, ref string) (string, error)

	// ===================
	// Status Operations
	// ===================

	// HasChanges returns true if there are uncommitted changes, staged or
	// not. If paths are specified, only checks those paths.
	HasChanges(ctx context.Context, paths ...string) (bool, error)

	// Status returns the status of files in the working directory.
	// If paths are specified, only checks those paths.
	Status(ctx context.Context, paths ...string) ([]FileStatus, error)

	// ===================
	// Raw Command Execution
	// ===================

	// Exec executes a raw VCS command (escape hatch).
	// Use sparingly; prefer interface methods.
	Exec(ctx context.Context, args ...string) ([]byte, error)
}

// ===================
// Supporting Types
// ===================

// TrackedFile is a file recorded in a tree.
type TrackedFile struct {
	// Path is relative to the repository root, slash separated
	Path string

	// Mode is the octal file mode as recorded by the VCS (e.g. "100644")
	Mode string
}

// Executable reports whether the tracked mode has the executable bit.
func (f TrackedFile) Executable() bool {
	return f.Mode == "100755"
}

// DateSource selects which commit timestamp is used for history.
type DateSource string

const (
	// DateCommitter uses the committer date (when the change landed)
	DateCommitter DateSource = "committer"

	// DateAuthor uses the author date (when the change was written)
	DateAuthor DateSource = "author"
)

// Valid reports whether d is a known date source.
func (d DateSource) Valid() bool {
	return d == DateCommitter || d == DateAuthor
}

// HistoryOptions configures a history query
type HistoryOptions struct {
	// Ref is the commit to start from. Empty means HEAD.
	Ref string

	// DateSource selects the timestamp. Empty means DateCommitter.
	DateSource DateSource
}

// Commit is one entry in the history of a path
type Commit struct {
	// Hash is the full commit hash
	Hash string

	// Time is the selected timestamp, in the offset it was recorded with
	Time time.Time

	// Path is the file path at this commit, which differs from the
	// queried path before a rename
	Path string

	// Boundary is true when the commit is a shallow clone boundary, so
	// earlier history for the path may be missing
	Boundary bool
}

// FileStatus represents the status of a file in the working directory
type FileStatus struct {
	// Path is the file path relative to repository root
	Path string

	// Status is the working directory status
	Status StatusCode

	// StagedCode is the staging area status
	StagedCode StatusCode
}

// Dirty reports whether the file differs from its committed version
// in the index or the working tree.
func (s FileStatus) Dirty() bool {
	return s.Status != StatusUnmodified || s.StagedCode != StatusUnmodified
}

// StatusCode represents file status codes
type StatusCode string

const (
	StatusUnmodified StatusCode = " " // No changes
	StatusModified   StatusCode = "M" // Modified
	StatusTypeChange StatusCode = "T" // File type changed
	StatusAdded      StatusCode = "A" // Added/new file
	StatusDeleted    StatusCode = "D" // Deleted
	StatusRenamed    StatusCode = "R" // Renamed
	StatusCopied     StatusCode = "C" // Copied
	StatusUntracked  StatusCode = "?" // Untracked
	StatusIgnored    StatusCode = "!" // Ignored
	StatusConflict   StatusCode = "U" // Unmerged/conflict
)

// ===================
// Constants
// ===================

// DefaultRef is the ref history is read from when none is given
const DefaultRef = "HEAD"

// DefaultTimeout bounds a single VCS command
const DefaultTimeout = 2 * time.Minute

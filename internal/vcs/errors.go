package vcs

import "errors"

// Errors returned by backends. Check them with errors.Is.
var (
	// ErrNotInVCS means no repository contains the path.
	ErrNotInVCS = errors.New("not in a git repository")

	// ErrVCSNotAvailable means the backend binary is not on PATH.
	ErrVCSNotAvailable = errors.New("VCS binary not available")

	// ErrUnsupportedVersion means the binary predates flags the history
	// queries rely on.
	ErrUnsupportedVersion = errors.New("VCS binary version not supported")

	// ErrRefNotFound means a ref does not resolve to a commit.
	ErrRefNotFound = errors.New("reference not found")

	// ErrTimeout means a command ran longer than DefaultTimeout.
	ErrTimeout = errors.New("operation timed out")
)

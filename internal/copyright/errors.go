package copyright

import "errors"

// Error kinds surfaced by the header synchronization engine.
//
// Callers classify failures with errors.Is:
//
//	if errors.Is(err, copyright.ErrHistoryUnavailable) {
//	    // mark the file as failed and keep going
//	}
var (
	// ErrHistoryUnavailable is returned when a path is not tracked or its
	// history cannot be read.
	ErrHistoryUnavailable = errors.New("history unavailable")

	// ErrHistoryTruncated is returned when the history of a path reaches a
	// shallow clone boundary, so its first year cannot be known.
	// It wraps ErrHistoryUnavailable.
	ErrHistoryTruncated = &wrappedError{
		msg:   "history truncated by shallow clone",
		cause: ErrHistoryUnavailable,
	}

	// ErrUncommittedChanges is returned by the change-safety gate when a
	// file differs from its last committed version.
	ErrUncommittedChanges = errors.New("file has uncommitted changes")

	// ErrUnsupportedFileType marks files without a comment style.
	// It is a skip reason, not a failure.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrWriteFailure is returned when the atomic replace of a file fails.
	ErrWriteFailure = errors.New("write failed")

	// ErrConfiguration is returned for invalid holder names or configuration.
	// It is fatal at startup.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrAmbiguousNotice is returned when the leading comment block holds
	// more than one copyright notice.
	ErrAmbiguousNotice = errors.New("multiple copyright notices in header")
)

type wrappedError struct {
	msg   string
	cause error
}

func (e *wrappedError) Error() string { return e.msg }
func (e *wrappedError) Unwrap() error { return e.cause }

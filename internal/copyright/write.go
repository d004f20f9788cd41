package copyright

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// WriteOutcome is the result of Write.
type WriteOutcome int

const (
	// Written means the file was replaced.
	Written WriteOutcome = iota

	// AlreadyCorrect means the new content equals the current content and
	// nothing was written.
	AlreadyCorrect
)

// String returns a human-readable representation of the outcome.
func (o WriteOutcome) String() string {
	switch o {
	case Written:
		return "written"
	case AlreadyCorrect:
		return "already correct"
	default:
		return "unknown"
	}
}

// Write replaces the file at path with updated unless it equals current.
// The modification time of an unchanged file is left alone.
func Write(path string, current, updated []byte) (WriteOutcome, error) {
	if bytes.Equal(current, updated) {
		return AlreadyCorrect, nil
	}
	if err := WriteFileAtomic(path, updated); err != nil {
		return Written, err
	}
	return Written, nil
}

// WriteFileAtomic writes data to a temporary file in the same directory
// and renames it over path, so readers see either the old or the new
// content. The permission bits of an existing file are kept.
func WriteFileAtomic(path string, data []byte) (err error) {
	perm := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp.*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteFailure, path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteFailure, path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteFailure, path, err)
	}
	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteFailure, path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteFailure, path, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteFailure, path, err)
	}
	return nil
}

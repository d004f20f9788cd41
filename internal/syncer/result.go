package syncer

import (
	"time"

	"github.com/mschirtzinger/git-copyright/internal/copyright"
)

// Outcome is the per-file result of a run.
type Outcome int

const (
	// Updated means the notice was inserted or rewritten.
	Updated Outcome = iota

	// Unchanged means the file already carried the correct notice.
	Unchanged

	// SkippedIgnored means an ignore pattern matched, or the file is
	// missing from the working tree.
	SkippedIgnored

	// SkippedUnsupported means no comment style is known for the file,
	// or it looks binary.
	SkippedUnsupported

	// SkippedUncommitted means the file needed a rewrite but has local
	// changes, and the override was not set.
	SkippedUncommitted

	// Outdated means the file needs a rewrite; reported in check mode
	// instead of writing.
	Outdated

	// Failed means history, scanning or writing failed.
	Failed

	numOutcomes
)

// Outcomes lists every outcome in display order.
var Outcomes = []Outcome{Updated, Unchanged, SkippedIgnored, SkippedUnsupported, SkippedUncommitted, Outdated, Failed}

// String returns a human-readable representation of the outcome
func (o Outcome) String() string {
	switch o {
	case Updated:
		return "updated"
	case Unchanged:
		return "unchanged"
	case SkippedIgnored:
		return "ignored"
	case SkippedUnsupported:
		return "unsupported"
	case SkippedUncommitted:
		return "uncommitted"
	case Outdated:
		return "outdated"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Blocking reports whether the outcome makes the run fail.
func (o Outcome) Blocking() bool {
	return o == Failed || o == SkippedUncommitted || o == Outdated
}

// Result is the outcome for one tracked file.
type Result struct {
	// Path is relative to the repository root, slash separated
	Path string

	Outcome Outcome

	// Range is the range written, or that would be written. Zero when the
	// file was not processed that far.
	Range copyright.YearRange

	// Previous is the range of the notice found in the file, if any
	Previous *copyright.YearRange

	// Reason explains every outcome other than Updated
	Reason string

	// Err is set for Failed and SkippedUncommitted
	Err error
}

// Summary aggregates the results of one run.
type Summary struct {
	// Results are sorted by path
	Results []Result

	Ref      string
	Check    bool
	Duration time.Duration

	counts [numOutcomes]int
}

// Count returns the number of files with outcome o.
func (s *Summary) Count(o Outcome) int {
	if o < 0 || o >= numOutcomes {
		return 0
	}
	return s.counts[o]
}

// Total returns the number of files considered.
func (s *Summary) Total() int {
	return len(s.Results)
}

// OK reports whether no file blocks the run.
func (s *Summary) OK() bool {
	for _, o := range Outcomes {
		if o.Blocking() && s.counts[o] > 0 {
			return false
		}
	}
	return true
}

// ExitCode returns the process exit status for the run: 0 on success and
// 1 when any file failed, was blocked by local changes, or is outdated in
// check mode.
func (s *Summary) ExitCode() int {
	if s.OK() {
		return 0
	}
	return 1
}

// Add records r.
func (s *Summary) Add(r Result) {
	s.Results = append(s.Results, r)
	s.counts[r.Outcome]++
}

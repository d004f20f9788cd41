package copyright

import (
	"fmt"
	"strconv"
	"strings"
)

// MinYear and MaxYear bound the four-digit years a YearRange may hold.
const (
	MinYear = 1000
	MaxYear = 9999
)

// YearRange is an inclusive span of calendar years.
// The zero value means "no range".
type YearRange struct {
	Start int
	End   int
}

// NewYearRange returns a validated range.
func NewYearRange(start, end int) (YearRange, error) {
	r := YearRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return YearRange{}, err
	}
	return r, nil
}

// SingleYear returns the range covering only year.
func SingleYear(year int) YearRange {
	return YearRange{Start: year, End: year}
}

// Validate reports whether both bounds are four-digit years and Start <= End.
func (r YearRange) Validate() error {
	if !validYear(r.Start) || !validYear(r.End) {
		return fmt.Errorf("year range %d-%d: years must have four digits", r.Start, r.End)
	}
	if r.Start > r.End {
		return fmt.Errorf("year range %d-%d: start is after end", r.Start, r.End)
	}
	return nil
}

// IsZero reports whether r is the zero range.
func (r YearRange) IsZero() bool {
	return r.Start == 0 && r.End == 0
}

// String renders "YYYY" when both bounds are equal and "YYYY-YYYY" otherwise.
func (r YearRange) String() string {
	if r.Start == r.End {
		return strconv.Itoa(r.Start)
	}
	return strconv.Itoa(r.Start) + "-" + strconv.Itoa(r.End)
}

// Widen returns the smallest range covering both r and other.
// A zero range on either side is ignored.
func (r YearRange) Widen(other YearRange) YearRange {
	switch {
	case r.IsZero():
		return other
	case other.IsZero():
		return r
	}
	return YearRange{Start: min(r.Start, other.Start), End: max(r.End, other.End)}
}

// Merge combines the history-derived range with the range of an existing
// notice, if any. The result never narrows either input.
func Merge(history YearRange, existing *YearRange) YearRange {
	if existing == nil {
		return history
	}
	return history.Widen(*existing)
}

// ParseYearRange parses a year token taken from a notice.
//
// Accepted forms are "2019", "2019-2022" (hyphen or en dash) and
// comma-separated lists of those, e.g. "2019, 2021-2022", which are read
// as the span from the smallest to the largest year. Anything else,
// including reversed spans and years that do not have four digits, is
// rejected.
func ParseYearRange(token string) (YearRange, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return YearRange{}, false
	}

	var out YearRange
	for _, part := range strings.Split(token, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return YearRange{}, false
		}
		part = strings.ReplaceAll(part, "–", "-")

		var r YearRange
		if from, to, ok := strings.Cut(part, "-"); ok {
			start, ok1 := parseYear(from)
			end, ok2 := parseYear(to)
			if !ok1 || !ok2 || start > end {
				return YearRange{}, false
			}
			r = YearRange{Start: start, End: end}
		} else {
			year, ok := parseYear(part)
			if !ok {
				return YearRange{}, false
			}
			r = SingleYear(year)
		}
		out = out.Widen(r)
	}
	return out, true
}

func parseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if len(s) != 4 {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	year, err := strconv.Atoi(s)
	if err != nil || !validYear(year) {
		return 0, false
	}
	return year, true
}

func validYear(y int) bool { return y >= MinYear && y <= MaxYear }

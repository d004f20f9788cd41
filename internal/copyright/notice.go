package copyright

import (
	"fmt"
	"regexp"
	"strings"
)

// Notice is the copyright statement written into a file header.
type Notice struct {
	Range  YearRange
	Holder string
}

// Text renders the notice body: "Copyright (c) <range> <holder>".
func (n Notice) Text() string {
	return fmt.Sprintf("Copyright (c) %s %s", n.Range, n.Holder)
}

// Line renders the notice wrapped in style, without a line terminator.
func (n Notice) Line(style CommentStyle) string {
	return style.Wrap(n.Text())
}

// Match is a notice recognised in comment text.
type Match struct {
	// Range is nil when the year token is malformed.
	Range  *YearRange
	Holder string
}

const (
	noticePrefix = `(?i)^(?:copyright(?:\s*(?:\(c\)|©))?|\(c\)|©)\s+`

	// yearList is one or more years or spans separated by commas.
	yearList = `(\d{4}(?:\s*[-–]\s*\d{4})?(?:\s*,\s*\d{4}(?:\s*[-–]\s*\d{4})?)*)`

	// looseYears is any digit-led token, so a malformed year still matches.
	looseYears = `([0-9][^\s,]*(?:\s*,\s*[0-9][^\s,]*)*)`
)

var (
	// canonicalNotice matches "Copyright (c) 2019-2022 Holder" and the
	// variants people write by hand: no "(c)", "©" instead of "(c)", "(c)"
	// or "©" without the word, and punctuation after the years as in
	// "Copyright 2015, Holder".
	canonicalNotice = regexp.MustCompile(noticePrefix + yearList + `[.,:;]?(?:\s+(.*))?$`)

	// legacyNotice matches "(c) Copyright Holder 2019-2022".
	legacyNotice = regexp.MustCompile(`(?i)^(?:\(c\)|©)\s+copyright\s+(.+?),?\s+` + yearList + `\.?$`)

	looseCanonicalNotice = regexp.MustCompile(noticePrefix + looseYears + `(?:\s+(.*))?$`)
	looseLegacyNotice    = regexp.MustCompile(`(?i)^(?:\(c\)|©)\s+copyright\s+(.+?)\s+` + looseYears + `$`)
)

// MatchNotice reports whether text, with its comment wrapper already
// removed, is a copyright notice. A notice whose year token cannot be
// parsed still matches, with a nil Range.
func MatchNotice(text string) (Match, bool) {
	text = strings.TrimSpace(text)
	if m := canonicalNotice.FindStringSubmatch(text); m != nil {
		return newMatch(m[1], m[2]), true
	}
	if m := legacyNotice.FindStringSubmatch(text); m != nil {
		return newMatch(m[2], m[1]), true
	}
	if m := looseCanonicalNotice.FindStringSubmatch(text); m != nil {
		return newMatch(m[1], m[2]), true
	}
	if m := looseLegacyNotice.FindStringSubmatch(text); m != nil {
		return newMatch(m[2], m[1]), true
	}
	return Match{}, false
}

func newMatch(years, holder string) Match {
	m := Match{Holder: strings.TrimSpace(holder)}
	if r, ok := ParseYearRange(years); ok {
		m.Range = &r
	}
	return m
}

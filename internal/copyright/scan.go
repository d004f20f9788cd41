package copyright

import (
	"bytes"
	"regexp"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// declarationLines are the forms recognised as a declaration that must stay
// at the top of a file, right after an optional shebang.
var declarationLines = []*regexp.Regexp{
	// PEP 263 source encoding, also covers Emacs "-*- coding: x -*-".
	regexp.MustCompile(`^[ \t\f]*#.*?coding[:=][ \t]*[-_.a-zA-Z0-9]+`),
	// Vim fileencoding modeline.
	regexp.MustCompile(`^[ \t\f]*#.*?\bvim?:.*\bfileencoding=`),
	// XML declaration.
	regexp.MustCompile(`^<\?xml\s.*\?>\s*$`),
	// PHP open tag.
	regexp.MustCompile(`^<\?php\b`),
}

// binarySniffLen is how many leading bytes are checked for NUL.
const binarySniffLen = 8000

// IsBinary reports whether content looks like binary data.
func IsBinary(content []byte) bool {
	if len(content) > binarySniffLen {
		content = content[:binarySniffLen]
	}
	return bytes.IndexByte(content, 0) >= 0
}

// HeaderRegion is the classified leading portion of a file.
type HeaderRegion struct {
	// PreambleEnd is the offset just past the preserved preamble (BOM,
	// shebang, declaration line). It is also where a new notice is
	// inserted.
	PreambleEnd int

	// Notice is the existing notice, or nil.
	Notice *NoticeSpan

	// EOL is the line terminator used by the file.
	EOL string
}

// Preamble returns the preserved preamble bytes of content.
func (h HeaderRegion) Preamble(content []byte) []byte {
	return content[:h.PreambleEnd]
}

// NoticeSpan locates an existing notice in the file content.
type NoticeSpan struct {
	// LineStart and LineEnd delimit the whole line, without its terminator.
	LineStart, LineEnd int

	// BodyStart and BodyEnd delimit the notice text inside the comment.
	BodyStart, BodyEnd int

	// Standalone is true when the line holds nothing but the notice and its
	// comment wrapper, so it can be replaced whole.
	Standalone bool

	// Range is the parsed year range, nil when the year token is malformed.
	Range *YearRange
}

// Scan classifies the leading region of content using style.
//
// It keeps an optional UTF-8 BOM, up to one shebang line and up to one
// declaration line as the preamble, then walks the comment lines that
// follow, stopping at the first line that is neither blank nor part of a
// comment. Notices further down the file are never seen. Two notices in
// that region yield ErrAmbiguousNotice.
func Scan(content []byte, style CommentStyle) (HeaderRegion, error) {
	region := HeaderRegion{EOL: detectEOL(content)}
	if !style.Supported() {
		return region, ErrUnsupportedFileType
	}

	lines := splitLines(content)
	pos := 0
	if bytes.HasPrefix(content, utf8BOM) {
		pos = len(utf8BOM)
		if len(lines) > 0 {
			lines[0].start = pos
		}
	}

	i := 0
	if i < len(lines) && isShebang(lines[i].text(content)) {
		pos = lines[i].next
		i++
	}
	if i < len(lines) && isDeclaration(lines[i].text(content)) {
		pos = lines[i].next
		i++
	}
	region.PreambleEnd = pos

	inBlock := false
	for ; i < len(lines); i++ {
		ln := lines[i]
		text := ln.text(content)
		if strings.TrimSpace(text) == "" {
			continue
		}

		body, standalone, ok := stripComment(style, text, &inBlock)
		if !ok {
			break
		}
		m, found := MatchNotice(body)
		if !found {
			continue
		}
		if region.Notice != nil {
			return region, ErrAmbiguousNotice
		}

		trimmed := strings.TrimSpace(body)
		off := strings.Index(text, trimmed)
		region.Notice = &NoticeSpan{
			LineStart:  ln.start,
			LineEnd:    ln.end,
			BodyStart:  ln.start + off,
			BodyEnd:    ln.start + off + len(trimmed),
			Standalone: standalone,
			Range:      m.Range,
		}
	}
	return region, nil
}

// stripComment removes the comment wrapper from one line. It reports false
// when the line is not part of a comment. inBlock carries block comment
// state across lines.
func stripComment(style CommentStyle, text string, inBlock *bool) (body string, standalone, ok bool) {
	trimmed := strings.TrimSpace(text)

	switch style.Kind() {
	case LineComment:
		if !strings.HasPrefix(trimmed, style.prefix) {
			return "", false, false
		}
		return strings.TrimPrefix(trimmed, style.prefix), true, true

	case BlockComment:
		if !*inBlock {
			if !strings.HasPrefix(trimmed, style.open) {
				return "", false, false
			}
			rest := strings.TrimPrefix(trimmed, style.open)
			if idx := strings.Index(rest, style.close); idx >= 0 {
				tail := strings.TrimSpace(rest[idx+len(style.close):])
				return rest[:idx], tail == "", true
			}
			*inBlock = true
			return stripDecoration(rest), false, true
		}
		if idx := strings.Index(trimmed, style.close); idx >= 0 {
			*inBlock = false
			return stripDecoration(trimmed[:idx]), false, true
		}
		return stripDecoration(trimmed), false, true

	default:
		return "", false, false
	}
}

// isShebang reports whether line is an interpreter line. "#![" starts a
// Rust inner attribute instead.
func isShebang(line string) bool {
	rest, ok := strings.CutPrefix(line, "#!")
	return ok && !strings.HasPrefix(strings.TrimLeft(rest, " \t"), "[")
}

// stripDecoration removes the leading "*" many block comments carry on
// each line.
func stripDecoration(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimLeft(s, "*")
}

func isDeclaration(line string) bool {
	for _, re := range declarationLines {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// detectEOL returns "\r\n" when the first line ends with CRLF.
func detectEOL(content []byte) string {
	idx := bytes.IndexByte(content, '\n')
	if idx > 0 && content[idx-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

type lineRef struct {
	start int // first byte of the line
	end   int // end of the line text, before "\r\n" or "\n"
	next  int // start of the following line
}

func (l lineRef) text(content []byte) string {
	return string(content[l.start:l.end])
}

func splitLines(content []byte) []lineRef {
	var lines []lineRef
	start := 0
	for start < len(content) {
		idx := bytes.IndexByte(content[start:], '\n')
		if idx < 0 {
			lines = append(lines, lineRef{start: start, end: len(content), next: len(content)})
			break
		}
		end := start + idx
		next := end + 1
		if end > start && content[end-1] == '\r' {
			end--
		}
		lines = append(lines, lineRef{start: start, end: end, next: next})
		start = next
	}
	return lines
}

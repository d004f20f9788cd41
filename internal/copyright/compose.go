package copyright

import "bytes"

// Compose returns content with notice placed in its header.
//
// An existing notice is replaced in place: the whole line when it stands
// alone, only its text when it shares the line with other comment
// content. Without an existing notice, the notice line is inserted right
// after the preamble and followed by a blank line unless one is already
// there. All other bytes are copied unchanged.
func Compose(content []byte, region HeaderRegion, style CommentStyle, notice Notice) []byte {
	if span := region.Notice; span != nil {
		var repl string
		start, end := span.BodyStart, span.BodyEnd
		if span.Standalone {
			repl = notice.Line(style)
			start, end = span.LineStart, span.LineEnd
		} else {
			repl = notice.Text()
		}

		out := make([]byte, 0, len(content)-(end-start)+len(repl))
		out = append(out, content[:start]...)
		out = append(out, repl...)
		out = append(out, content[end:]...)
		return out
	}

	eol := region.EOL
	if eol == "" {
		eol = "\n"
	}
	pre := content[:region.PreambleEnd]
	rest := content[region.PreambleEnd:]

	var buf bytes.Buffer
	buf.Grow(len(content) + 2*len(eol) + 80)
	buf.Write(pre)
	if len(pre) > 0 && !bytes.HasSuffix(pre, []byte("\n")) && !isOnlyBOM(pre) {
		buf.WriteString(eol)
	}
	buf.WriteString(notice.Line(style))
	buf.WriteString(eol)
	if len(rest) > 0 && !startsWithBlankLine(rest) {
		buf.WriteString(eol)
	}
	buf.Write(rest)
	return buf.Bytes()
}

func isOnlyBOM(b []byte) bool { return bytes.Equal(b, utf8BOM) }

func startsWithBlankLine(b []byte) bool {
	return bytes.HasPrefix(b, []byte("\n")) || bytes.HasPrefix(b, []byte("\r\n"))
}

package copyright

import (
	"path"
	"strings"
)

// StyleKind identifies how a notice is embedded in a file.
type StyleKind uint8

const (
	// Unsupported means the file type has no known comment syntax.
	Unsupported StyleKind = iota

	// LineComment wraps text after a prefix, e.g. "# text".
	LineComment

	// BlockComment wraps text in an open/close pair, e.g. "/* text */".
	BlockComment
)

// String returns a human-readable representation of the kind.
func (k StyleKind) String() string {
	switch k {
	case LineComment:
		return "line"
	case BlockComment:
		return "block"
	default:
		return "unsupported"
	}
}

// CommentStyle is the comment convention used to embed a notice.
// The zero value is the unsupported style.
type CommentStyle struct {
	kind   StyleKind
	prefix string
	open   string
	close  string
}

// LineStyle returns a line comment style with the given prefix.
func LineStyle(prefix string) CommentStyle {
	return CommentStyle{kind: LineComment, prefix: prefix}
}

// BlockStyle returns a block comment style.
func BlockStyle(open, close string) CommentStyle {
	return CommentStyle{kind: BlockComment, open: open, close: close}
}

// Kind returns the style kind.
func (s CommentStyle) Kind() StyleKind { return s.kind }

// Supported reports whether notices can be embedded with s.
func (s CommentStyle) Supported() bool { return s.kind != Unsupported }

// Prefix returns the line comment prefix.
func (s CommentStyle) Prefix() string { return s.prefix }

// Delimiters returns the block comment open and close sequences.
func (s CommentStyle) Delimiters() (open, close string) { return s.open, s.close }

// String returns the style as it would appear in configuration.
func (s CommentStyle) String() string {
	switch s.kind {
	case LineComment:
		return s.prefix
	case BlockComment:
		return s.open + " " + s.close
	default:
		return "unsupported"
	}
}

// Wrap embeds text in the comment syntax, without a line terminator.
func (s CommentStyle) Wrap(text string) string {
	switch s.kind {
	case LineComment:
		return s.prefix + " " + text
	case BlockComment:
		return s.open + " " + text + " " + s.close
	default:
		panic("copyright: Wrap called on unsupported comment style")
	}
}

// Resolver maps file paths to comment styles. Lookup is case-sensitive:
// the full file name (e.g. "Makefile") is tried first, then the extension
// without its leading dot (e.g. "py").
type Resolver struct {
	styles map[string]CommentStyle
}

// NewResolver returns a resolver over the given mapping.
// Entries holding the unsupported style force files of that type to be
// skipped.
func NewResolver(styles map[string]CommentStyle) *Resolver {
	m := make(map[string]CommentStyle, len(styles))
	for k, v := range styles {
		m[k] = v
	}
	return &Resolver{styles: m}
}

// Resolve returns the comment style for p. Unknown types resolve to the
// unsupported style.
func (r *Resolver) Resolve(p string) CommentStyle {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	if s, ok := r.styles[base]; ok {
		return s
	}
	ext := path.Ext(base)
	if ext == "" || ext == base {
		return CommentStyle{}
	}
	return r.styles[strings.TrimPrefix(ext, ".")]
}

// Closers returns the distinct block close sequences known to r.
func (r *Resolver) Closers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range r.styles {
		if s.kind == BlockComment && !seen[s.close] {
			seen[s.close] = true
			out = append(out, s.close)
		}
	}
	return out
}

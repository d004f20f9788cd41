// Package ui renders run results for people (styled text) and for tools
// (JSON).
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/mschirtzinger/git-copyright/internal/syncer"
)

var (
	colorGreen  = lipgloss.Color("#00D787")
	colorYellow = lipgloss.Color("#F59E0B")
	colorRed    = lipgloss.Color("#FF5F87")
	colorGray   = lipgloss.Color("#808080")
)

// ColorEnabled reports whether ANSI colours should be written to f: it must
// be a terminal and NO_COLOR must be unset.
func ColorEnabled(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// Printer writes styled run summaries.
type Printer struct {
	w       io.Writer
	verbose bool

	path   lipgloss.Style
	dim    lipgloss.Style
	styles map[syncer.Outcome]lipgloss.Style
}

// NewPrinter returns a Printer writing to w. Without color every style
// renders as plain text. With verbose, unchanged and ignored files are
// listed too.
func NewPrinter(w io.Writer, color, verbose bool) *Printer {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	label := func(c lipgloss.TerminalColor) lipgloss.Style {
		return r.NewStyle().Foreground(c).Width(12)
	}

	return &Printer{
		w:       w,
		verbose: verbose,
		path:    r.NewStyle().Bold(true),
		dim:     r.NewStyle().Foreground(colorGray),
		styles: map[syncer.Outcome]lipgloss.Style{
			syncer.Updated:            label(colorGreen).Bold(true),
			syncer.Unchanged:          label(colorGray),
			syncer.SkippedIgnored:     label(colorGray),
			syncer.SkippedUnsupported: label(colorGray),
			syncer.SkippedUncommitted: label(colorYellow).Bold(true),
			syncer.Outdated:           label(colorYellow).Bold(true),
			syncer.Failed:             label(colorRed).Bold(true),
		},
	}
}

// PrintSummary writes one line per interesting file, then the counts.
func (p *Printer) PrintSummary(sum *syncer.Summary) {
	for _, r := range sum.Results {
		if !p.shows(r.Outcome) {
			continue
		}
		fmt.Fprintln(p.w, p.line(r))
	}
	if sum.Total() > 0 && p.listedAny(sum) {
		fmt.Fprintln(p.w)
	}
	fmt.Fprintln(p.w, p.counts(sum))
}

func (p *Printer) shows(o syncer.Outcome) bool {
	switch o {
	case syncer.Unchanged, syncer.SkippedIgnored:
		return p.verbose
	default:
		return true
	}
}

func (p *Printer) listedAny(sum *syncer.Summary) bool {
	for _, r := range sum.Results {
		if p.shows(r.Outcome) {
			return true
		}
	}
	return false
}

func (p *Printer) line(r syncer.Result) string {
	var b strings.Builder
	b.WriteString(p.styles[r.Outcome].Render(r.Outcome.String()))
	b.WriteString(p.path.Render(r.Path))
	if !r.Range.IsZero() && (r.Outcome == syncer.Updated || r.Outcome == syncer.Outdated) {
		b.WriteString(" ")
		b.WriteString(p.dim.Render(r.Range.String()))
	}
	if r.Outcome != syncer.Updated && r.Reason != "" {
		b.WriteString(p.dim.Render(": " + r.Reason))
	}
	return b.String()
}

func (p *Printer) counts(sum *syncer.Summary) string {
	var parts []string
	for _, o := range syncer.Outcomes {
		n := sum.Count(o)
		if n == 0 {
			continue
		}
		parts = append(parts, p.styles[o].UnsetWidth().Render(fmt.Sprintf("%d %s", n, o)))
	}
	if len(parts) == 0 {
		return p.dim.Render("no tracked files")
	}
	return fmt.Sprintf("%d files: %s %s", sum.Total(), strings.Join(parts, ", "),
		p.dim.Render("("+sum.Duration.Round(time.Millisecond).String()+")"))
}

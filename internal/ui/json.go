package ui

import (
	"encoding/json"
	"io"

	"github.com/mschirtzinger/git-copyright/internal/syncer"
)

// Report is the JSON form of a run.
type Report struct {
	Ref      string         `json:"ref"`
	Check    bool           `json:"check"`
	OK       bool           `json:"ok"`
	Duration string         `json:"duration"`
	Counts   map[string]int `json:"counts"`
	Files    []FileReport   `json:"files"`
}

// FileReport is the JSON form of one Result.
type FileReport struct {
	Path     string `json:"path"`
	Outcome  string `json:"outcome"`
	Range    string `json:"range,omitempty"`
	Previous string `json:"previous,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// NewReport converts a summary.
func NewReport(sum *syncer.Summary) Report {
	rep := Report{
		Ref:      sum.Ref,
		Check:    sum.Check,
		OK:       sum.OK(),
		Duration: sum.Duration.String(),
		Counts:   make(map[string]int, len(syncer.Outcomes)),
		Files:    make([]FileReport, 0, len(sum.Results)),
	}
	for _, o := range syncer.Outcomes {
		rep.Counts[o.String()] = sum.Count(o)
	}
	for _, r := range sum.Results {
		fr := FileReport{
			Path:    r.Path,
			Outcome: r.Outcome.String(),
			Reason:  r.Reason,
		}
		if !r.Range.IsZero() {
			fr.Range = r.Range.String()
		}
		if r.Previous != nil {
			fr.Previous = r.Previous.String()
		}
		rep.Files = append(rep.Files, fr)
	}
	return rep
}

// WriteJSON writes the report for sum as indented JSON.
func WriteJSON(w io.Writer, sum *syncer.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewReport(sum))
}

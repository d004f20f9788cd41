package copyright

// Rewrite is the planned change to one file.
type Rewrite struct {
	// Content is the full new file content.
	Content []byte

	// Range is the range written into the notice.
	Range YearRange

	// Previous is the range of the notice that was found, if any.
	Previous *YearRange

	// Changed is false when Content equals the input.
	Changed bool
}

// Plan scans content, merges the history range with any existing notice
// and composes the new content. It does not touch the filesystem.
func Plan(content []byte, style CommentStyle, history YearRange, holder string) (Rewrite, error) {
	if !style.Supported() || IsBinary(content) {
		return Rewrite{}, ErrUnsupportedFileType
	}
	region, err := Scan(content, style)
	if err != nil {
		return Rewrite{}, err
	}

	var previous *YearRange
	if region.Notice != nil {
		previous = region.Notice.Range
	}
	rng := Merge(history, previous)
	updated := Compose(content, region, style, Notice{Range: rng, Holder: holder})

	return Rewrite{
		Content:  updated,
		Range:    rng,
		Previous: previous,
		Changed:  string(updated) != string(content),
	}, nil
}

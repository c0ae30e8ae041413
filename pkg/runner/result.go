package runner

import "github.com/yaklabco/mdfmt/pkg/edit"

// FileOutcome is the result of formatting one file.
type FileOutcome struct {
	// Path is the absolute path of the file.
	Path string

	// RelPath is Path relative to the run's working directory, used in
	// reports and diff headers.
	RelPath string

	// Changed is true when the file is not in canonical form.
	Changed bool

	// Edits is the number of edits that make the file canonical.
	Edits int

	// Written is true when the canonical text was written back.
	Written bool

	// Skipped is true when the file was left alone: it holds constructs
	// the formatter ignores, or it changed on disk while being formatted.
	Skipped    bool
	SkipReason string

	// Canonical is the formatted text. Empty when the file errored.
	Canonical string

	// Diff is set for changed files when Options.Diff is true.
	Diff *edit.Unified

	// Error is set if the file could not be processed.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	FilesDiscovered int
	FilesChecked    int
	FilesChanged    int
	FilesWritten    int
	FilesSkipped    int
	FilesErrored    int
	EditsTotal      int
}

// Result is the overall runner result.
type Result struct {
	// Files are ordered by path.
	Files []FileOutcome

	Stats Stats
}

// HasChanges reports whether any file is not canonical.
func (r *Result) HasChanges() bool {
	return r != nil && r.Stats.FilesChanged > 0
}

// HasErrors reports whether any file failed.
func (r *Result) HasErrors() bool {
	return r != nil && r.Stats.FilesErrored > 0
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	switch {
	case outcome.Error != nil:
		r.Stats.FilesErrored++
		return
	case outcome.Skipped:
		r.Stats.FilesSkipped++
	}

	r.Stats.FilesChecked++
	if outcome.Changed {
		r.Stats.FilesChanged++
		r.Stats.EditsTotal += outcome.Edits
	}
	if outcome.Written {
		r.Stats.FilesWritten++
	}
}

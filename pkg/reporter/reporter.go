// Package reporter writes the results of a format run as text, JSON, or
// unified diffs.
package reporter

import (
	"context"
	"fmt"

	"github.com/yaklabco/mdfmt/pkg/runner"
)

// Reporter formats and writes run results.
type Reporter interface {
	// Report writes output for the given result. It returns the number of
	// files that are (or were) not canonical and any write error.
	Report(ctx context.Context, result *runner.Result) (int, error)
}

// New creates a Reporter for the specified options.
//
//nolint:ireturn // Factory returns the interface by design.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = DefaultOptions().Writer
	}

	format := opts.Format
	if format == "" {
		format = FormatText
	}

	switch format {
	case FormatJSON:
		return NewJSONReporter(opts), nil
	case FormatDiff:
		return NewDiffReporter(opts), nil
	case FormatText:
		return NewTextReporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func displayPath(file runner.FileOutcome) string {
	if file.RelPath != "" {
		return file.RelPath
	}
	return file.Path
}

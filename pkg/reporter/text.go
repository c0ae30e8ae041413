package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/mdfmt/internal/ui/pretty"
	"github.com/yaklabco/mdfmt/pkg/runner"
)

// TextReporter lists files that need (or got) formatting, one per line.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(pretty.IsColorEnabled(opts.Color, opts.Writer)),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil {
		result = &runner.Result{}
	}

	var changed int
	for _, file := range result.Files {
		path := r.styles.FilePath.Render(displayPath(file))

		switch {
		case file.Error != nil:
			fmt.Fprintf(r.bw, "%s: %s\n", path, r.styles.Error.Render("error: "+file.Error.Error()))
		case file.Skipped:
			fmt.Fprintf(r.bw, "%s: %s\n", path, r.styles.Warning.Render("skipped: "+file.SkipReason))
		case file.Changed:
			changed++
			fmt.Fprintf(r.bw, "%s: %s\n", path, r.changeLabel(file))
		case r.opts.Verbose:
			fmt.Fprintf(r.bw, "%s: %s\n", path, r.styles.Dim.Render("already formatted"))
		}
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats, r.opts.Written))
	}

	return changed, nil
}

func (r *TextReporter) changeLabel(file runner.FileOutcome) string {
	edits := "1 edit"
	if file.Edits != 1 {
		edits = fmt.Sprintf("%d edits", file.Edits)
	}
	if file.Written {
		return r.styles.Success.Render("reformatted") + r.styles.Dim.Render(" ("+edits+")")
	}
	return r.styles.Changed.Render("would reformat") + r.styles.Dim.Render(" ("+edits+")")
}

package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/mdfmt/pkg/runner"
)

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

// FormatSummaryOneLine formats run statistics as a single line, e.g.
// "2 files would be reformatted, 5 files already formatted, 1 failed".
// written selects the past tense used after format --write.
func (s *Styles) FormatSummaryOneLine(stats runner.Stats, written bool) string {
	unchanged := max(0, stats.FilesChecked-stats.FilesChanged-stats.FilesSkipped)

	if stats.FilesDiscovered == 0 {
		return s.Dim.Render("No Markdown files found") + "\n"
	}

	var parts []string
	switch {
	case stats.FilesChanged == 0:
		parts = append(parts, s.Success.Render(plural(unchanged, "file", "files")+" already formatted"))
	case written:
		parts = append(parts,
			s.Success.Render(plural(stats.FilesWritten, "file", "files")+" reformatted"),
			s.Dim.Render(plural(unchanged, "file", "files")+" left unchanged"))
	default:
		parts = append(parts,
			s.Changed.Render(plural(stats.FilesChanged, "file", "files")+" would be reformatted"),
			s.Dim.Render(plural(unchanged, "file", "files")+" already formatted"))
	}

	if stats.FilesSkipped > 0 {
		parts = append(parts, s.Warning.Render(plural(stats.FilesSkipped, "file", "files")+" skipped"))
	}
	if stats.FilesErrored > 0 {
		parts = append(parts, s.Failure.Render(fmt.Sprintf("%d failed", stats.FilesErrored)))
	}

	return strings.Join(parts, ", ") + "\n"
}

package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdfmt/pkg/edit"
	"github.com/yaklabco/mdfmt/pkg/reporter"
	"github.com/yaklabco/mdfmt/pkg/runner"
)

func sampleResult() *runner.Result {
	diff := edit.GenerateDiff("docs/messy.md", "Title\n=====\n", "# Title\n")
	return &runner.Result{
		Files: []runner.FileOutcome{
			{Path: "/w/README.md", RelPath: "README.md"},
			{Path: "/w/docs/messy.md", RelPath: "docs/messy.md", Changed: true, Edits: 2, Diff: diff},
			{Path: "/w/docs/quote.md", RelPath: "docs/quote.md", Skipped: true, SkipReason: "unsupported construct BlockQuote"},
			{Path: "/w/docs/gone.md", RelPath: "docs/gone.md", Error: errors.New("permission denied")},
		},
		Stats: runner.Stats{
			FilesDiscovered: 4,
			FilesChecked:    3,
			FilesChanged:    1,
			FilesSkipped:    1,
			FilesErrored:    1,
			EditsTotal:      2,
		},
	}
}

func report(t *testing.T, opts reporter.Options, result *runner.Result) (string, int) {
	t.Helper()

	var buf bytes.Buffer
	opts.Writer = &buf
	opts.Color = "never"

	rep, err := reporter.New(opts)
	require.NoError(t, err)

	changed, err := rep.Report(context.Background(), result)
	require.NoError(t, err)
	return buf.String(), changed
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    reporter.Format
		wantErr bool
	}{
		{"", reporter.FormatText, false},
		{"text", reporter.FormatText, false},
		{"json", reporter.FormatJSON, false},
		{"diff", reporter.FormatDiff, false},
		{"sarif", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := reporter.ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.False(t, reporter.Format(tt.input).IsValid())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestNewUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := reporter.New(reporter.Options{Writer: &bytes.Buffer{}, Format: "table"})
	require.Error(t, err)
}

func TestTextReporter(t *testing.T) {
	t.Parallel()

	out, changed := report(t, reporter.Options{Format: reporter.FormatText, ShowSummary: true}, sampleResult())

	assert.Equal(t, 1, changed)
	assert.Equal(t,
		"docs/messy.md: would reformat (2 edits)\n"+
			"docs/quote.md: skipped: unsupported construct BlockQuote\n"+
			"docs/gone.md: error: permission denied\n"+
			"1 file would be reformatted, 1 file already formatted, 1 file skipped, 1 failed\n",
		out)
}

func TestTextReporterVerboseWritten(t *testing.T) {
	t.Parallel()

	result := &runner.Result{
		Files: []runner.FileOutcome{
			{RelPath: "a.md"},
			{RelPath: "b.md", Changed: true, Written: true, Edits: 1},
		},
	}

	out, changed := report(t, reporter.Options{Verbose: true, Written: true}, result)

	assert.Equal(t, 1, changed)
	assert.Equal(t, "a.md: already formatted\nb.md: reformatted (1 edit)\n", out)
}

func TestJSONReporter(t *testing.T) {
	t.Parallel()

	out, changed := report(t, reporter.Options{Format: reporter.FormatJSON}, sampleResult())
	assert.Equal(t, 1, changed)

	var decoded reporter.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	assert.Equal(t, "1.0.0", decoded.Version)
	require.Len(t, decoded.Files, 4)
	assert.Equal(t, "README.md", decoded.Files[0].Path)
	assert.False(t, decoded.Files[0].Changed)
	assert.True(t, decoded.Files[1].Changed)
	assert.Equal(t, 2, decoded.Files[1].Edits)
	assert.True(t, decoded.Files[2].Skipped)
	assert.Equal(t, "permission denied", decoded.Files[3].Error)
	assert.Equal(t, reporter.JSONSummary{
		FilesChecked: 3,
		FilesChanged: 1,
		FilesSkipped: 1,
		FilesErrored: 1,
		TotalEdits:   2,
	}, decoded.Summary)
}

func TestJSONReporterCompactNil(t *testing.T) {
	t.Parallel()

	out, changed := report(t, reporter.Options{Format: reporter.FormatJSON, Compact: true}, nil)

	assert.Equal(t, 0, changed)
	assert.Equal(t,
		`{"version":"1.0.0","files":[],"summary":{"filesChecked":0,"filesChanged":0,`+
			`"filesWritten":0,"filesSkipped":0,"filesErrored":0,"totalEdits":0}}`+"\n",
		out)
}

func TestDiffReporter(t *testing.T) {
	t.Parallel()

	out, changed := report(t, reporter.Options{Format: reporter.FormatDiff, ShowSummary: true}, sampleResult())

	assert.Equal(t, 1, changed)
	assert.Contains(t, out, "diff --git a/docs/messy.md b/docs/messy.md\n--- a/docs/messy.md\n+++ b/docs/messy.md\n@@ ")
	assert.Contains(t, out, "-Title\n-=====\n+# Title\n")
	assert.Contains(t, out, "docs/gone.md: error: permission denied\n")
	assert.Contains(t, out, "1 file changed, 1 insertion(+), 2 deletions(-)\n")
	assert.NotContains(t, out, "README.md")
}

func TestDiffReporterNoChanges(t *testing.T) {
	t.Parallel()

	result := &runner.Result{Files: []runner.FileOutcome{{RelPath: "a.md"}}}
	out, changed := report(t, reporter.Options{Format: reporter.FormatDiff, ShowSummary: true}, result)

	assert.Equal(t, 0, changed)
	assert.Empty(t, out)
}

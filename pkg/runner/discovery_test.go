package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdfmt/pkg/runner"
)

// makeTree creates files (with content) under a temp dir and returns it.
func makeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func rel(t *testing.T, dir string, paths []string) []string {
	t.Helper()

	out := make([]string, 0, len(paths))
	for _, p := range paths {
		r, err := filepath.Rel(dir, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	tree := map[string]string{
		"README.md":             "x",
		"docs/guide.md":         "x",
		"docs/api.markdown":     "x",
		"docs/CHANGELOG.md":     "x",
		"vendor/lib/readme.md":  "x",
		".github/template.md":   "x",
		"src/main.go":           "x",
		"notes.txt":             "x",
		"docs/.draft.md":        "x",
		"docs/nested/deep.MD":   "x",
		"generated/out/file.md": "x",
	}

	tests := []struct {
		name string
		opts runner.Options
		want []string
	}{
		{
			name: "walks directory",
			opts: runner.Options{},
			want: []string{
				"README.md",
				"docs/CHANGELOG.md",
				"docs/api.markdown",
				"docs/guide.md",
				"docs/nested/deep.MD",
				"generated/out/file.md",
				"vendor/lib/readme.md",
			},
		},
		{
			name: "ignore patterns",
			opts: runner.Options{Ignore: []string{"vendor/**", "CHANGELOG.md", "generated/**/*.md"}},
			want: []string{
				"README.md",
				"docs/api.markdown",
				"docs/guide.md",
				"docs/nested/deep.MD",
			},
		},
		{
			name: "custom extensions",
			opts: runner.Options{Paths: []string{"docs"}, Extensions: []string{".markdown"}},
			want: []string{"docs/api.markdown"},
		},
		{
			name: "named file bypasses extension filter",
			opts: runner.Options{Paths: []string{"notes.txt", "README.md", "./README.md"}},
			want: []string{"README.md", "notes.txt"},
		},
		{
			name: "named file still honors ignore",
			opts: runner.Options{Paths: []string{"docs/CHANGELOG.md"}, Ignore: []string{"CHANGELOG.md"}},
			want: []string{},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			dir := makeTree(t, tree)
			opts := testCase.opts
			opts.WorkingDir = dir

			files, err := runner.Discover(context.Background(), opts)
			require.NoError(t, err)
			assert.Equal(t, testCase.want, rel(t, dir, files))
		})
	}
}

func TestDiscover_Errors(t *testing.T) {
	t.Parallel()

	dir := makeTree(t, map[string]string{"a.md": "x"})

	_, err := runner.Discover(context.Background(), runner.Options{
		WorkingDir: dir,
		Paths:      []string{"missing"},
	})
	require.Error(t, err)

	_, err = runner.Discover(context.Background(), runner.Options{
		WorkingDir: dir,
		Ignore:     []string{"[unclosed"},
	})
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = runner.Discover(ctx, runner.Options{WorkingDir: dir})
	require.ErrorIs(t, err, context.Canceled)
}

func TestMatcher(t *testing.T) {
	t.Parallel()

	m, err := runner.CompileIgnore([]string{"vendor/**", "*.gen.md", "./docs/skip.md"})
	require.NoError(t, err)

	tests := []struct {
		path string
		want bool
	}{
		{"vendor/a.md", true},
		{"vendor/x/y/z.md", true},
		{"src/vendor/a.md", false},
		{"api.gen.md", true},
		{"docs/api.gen.md", true},
		{"docs/skip.md", true},
		{"other/docs/skip.md", false},
		{"README.md", false},
	}
	for _, testCase := range tests {
		assert.Equal(t, testCase.want, m.Match(testCase.path), testCase.path)
	}

	assert.True(t, m.MatchDir("vendor"))
	assert.False(t, m.MatchDir("docs"))

	var none *runner.Matcher
	assert.False(t, none.Match("a.md"))
}

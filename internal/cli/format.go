package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/mdfmt/internal/logging"
	"github.com/yaklabco/mdfmt/pkg/config"
	"github.com/yaklabco/mdfmt/pkg/edit"
	"github.com/yaklabco/mdfmt/pkg/format"
	"github.com/yaklabco/mdfmt/pkg/fsutil"
	"github.com/yaklabco/mdfmt/pkg/reporter"
	"github.com/yaklabco/mdfmt/pkg/runner"
)

// stdinPath names standard input in arguments and diff headers.
const stdinPath = "-"

type formatFlags struct {
	write          bool
	check          bool
	diff           bool
	format         string
	flavor         string
	width          int
	onUnsupported  string
	jobs           int
	ignore         []string
	extensions     []string
	followSymlinks bool
	verbose        bool
	quiet          bool
	compact        bool
}

func newFormatCommand(global *globalFlags) *cobra.Command {
	flags := &formatFlags{}

	cmd := &cobra.Command{
		Use:   "format [paths...]",
		Short: "Format Markdown files",
		Long:  formatLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, args, global, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.write, "write", "w", false, "rewrite files in place")
	cmd.Flags().BoolVar(&flags.check, "check", false, "exit 1 if any file would be reformatted")
	cmd.Flags().BoolVar(&flags.diff, "diff", false, "print unified diffs of the changes")
	cmd.Flags().StringVar(&flags.format, "format", "", "report format: text, json, diff")
	cmd.Flags().StringVar(&flags.flavor, "flavor", "", "Markdown flavor: commonmark, gfm")
	cmd.Flags().IntVar(&flags.width, "width", 0, "maximum paragraph line width (default 80)")
	cmd.Flags().StringVar(&flags.onUnsupported, "on-unsupported", "",
		"what to do with unsupported constructs: error, ignore")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().StringSliceVar(&flags.extensions, "extensions", nil,
		"file extensions to format when walking directories")
	cmd.Flags().BoolVar(&flags.followSymlinks, "follow-symlinks", false, "follow symlinked directories")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "also list files that are already formatted")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "omit the summary line")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact JSON output")

	return cmd
}

const formatLongDescription = `Format Markdown files into canonical form.

Given a single file or "-" for standard input, the canonical text is printed
to standard output. Given directories or several files, mdfmt reports which
files would change; use --write to rewrite them or --check to fail when any
file is not formatted.

Examples:
  mdfmt format README.md          # Print canonical README.md
  cat notes.md | mdfmt format -   # Format standard input
  mdfmt format --check .          # Fail if anything would change
  mdfmt format --write docs/      # Rewrite files in place
  mdfmt format --diff             # Show what would change
  mdfmt format --format json .    # Machine-readable report`

// cliConfig collects the flag values that were explicitly set.
func (f *formatFlags) cliConfig(cmd *cobra.Command) *config.Config {
	cfg := &config.Config{
		Write: f.write,
		Check: f.check,
	}

	changed := cmd.Flags().Changed
	if changed("flavor") {
		cfg.Flavor = config.Flavor(f.flavor)
	}
	if changed("width") {
		cfg.Width = f.width
	}
	if changed("on-unsupported") {
		cfg.OnUnsupported = f.onUnsupported
	}
	if changed("jobs") {
		cfg.Jobs = f.jobs
	}
	if changed("ignore") {
		cfg.Ignore = f.ignore
	}
	if changed("extensions") {
		cfg.Extensions = f.extensions
	}
	if changed("format") {
		cfg.Format = config.OutputFormat(f.format)
	}
	return cfg
}

func runFormat(cmd *cobra.Command, args []string, global *globalFlags, flags *formatFlags) error {
	if flags.write && flags.check {
		return usageErrorf("--write and --check cannot be used together")
	}
	if cmd.Flags().Changed("width") && flags.width <= 0 {
		return usageErrorf("--width must be positive, got %d", flags.width)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, workDir, err := global.loadConfig(ctx, flags.cliConfig(cmd))
	if err != nil {
		return err
	}

	formatter, err := newFormatter(cfg)
	if err != nil {
		return err
	}

	modeFlags := flags.write || flags.check || flags.diff || cmd.Flags().Changed("format")

	switch {
	case len(args) == 1 && args[0] == stdinPath:
		return formatStdin(cmd, formatter, flags)
	case len(args) == 0 && !modeFlags && !isTerminal(cmd.InOrStdin()):
		return formatStdin(cmd, formatter, flags)
	case len(args) == 1 && !modeFlags && isRegularFile(args[0]):
		return printCanonical(ctx, cmd, formatter, args[0])
	}

	for _, arg := range args {
		if arg == stdinPath {
			return usageErrorf("%q cannot be combined with other paths", stdinPath)
		}
	}

	return formatFiles(ctx, cmd, args, workDir, cfg, formatter, global, flags)
}

func formatFiles(
	ctx context.Context,
	cmd *cobra.Command,
	args []string,
	workDir string,
	cfg *config.Config,
	formatter *format.Formatter,
	global *globalFlags,
	flags *formatFlags,
) error {
	logger := logging.Default()

	reportFormat, err := reporter.ParseFormat(string(cfg.Format))
	if err != nil {
		return withCode(ExitInvalidUsage, err)
	}
	if flags.diff && !cmd.Flags().Changed("format") {
		reportFormat = reporter.FormatDiff
	}

	runOpts := runner.Options{
		Paths:          args,
		WorkingDir:     workDir,
		Extensions:     cfg.Extensions,
		Ignore:         cfg.Ignore,
		FollowSymlinks: flags.followSymlinks,
		Jobs:           cfg.Jobs,
		Write:          cfg.Write,
		Diff:           reportFormat == reporter.FormatDiff,
	}

	logger.Debug("starting format run",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
		logging.FieldWrite, runOpts.Write,
		logging.FieldCheck, cfg.Check,
	)

	result, err := runner.New(formatter).Run(ctx, runOpts)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return withCode(ExitIOError, fmt.Errorf("format run: %w", err))
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		Format:      reportFormat,
		Color:       global.color,
		ShowSummary: !flags.quiet,
		Verbose:     flags.verbose,
		Written:     cfg.Write,
		Compact:     flags.compact,
	})
	if err != nil {
		return withCode(ExitInvalidUsage, err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		return withCode(ExitIOError, fmt.Errorf("report results: %w", err))
	}

	logger.Debug("format run complete",
		logging.FieldFilesChecked, result.Stats.FilesChecked,
		logging.FieldFilesChanged, result.Stats.FilesChanged,
		logging.FieldFilesModified, result.Stats.FilesWritten,
		logging.FieldFilesSkipped, result.Stats.FilesSkipped,
		logging.FieldFilesFailed, result.Stats.FilesErrored,
	)

	switch {
	case result.HasErrors():
		return ErrFormatFailed
	case cfg.Check && result.HasChanges():
		return ErrUnformatted
	default:
		return nil
	}
}

// formatStdin formats standard input. The canonical text goes to standard
// output unless --check or --diff asks for something else.
func formatStdin(cmd *cobra.Command, formatter *format.Formatter, flags *formatFlags) error {
	if flags.write {
		return usageErrorf("--write cannot be used with standard input")
	}

	input, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return withCode(ExitIOError, fmt.Errorf("read stdin: %w", err))
	}

	res, err := formatter.Document(string(input))
	if err != nil {
		return withCode(ExitFailure, fmt.Errorf("format stdin: %w", err))
	}
	if res.Skipped != nil {
		logging.Default().Warn("left standard input unchanged", logging.FieldError, res.Skipped)
	}

	out := cmd.OutOrStdout()
	switch {
	case flags.diff:
		if diff := edit.GenerateDiff("stdin", string(input), res.Canonical); diff.HasChanges() {
			if _, err := io.WriteString(out, diff.String()); err != nil {
				return withCode(ExitIOError, fmt.Errorf("write diff: %w", err))
			}
		}
	case flags.check:
	default:
		if _, err := io.WriteString(out, res.Canonical); err != nil {
			return withCode(ExitIOError, fmt.Errorf("write stdout: %w", err))
		}
	}

	if flags.check && res.Changed() {
		return ErrUnformatted
	}
	return nil
}

// printCanonical writes the canonical form of one file to standard output.
func printCanonical(ctx context.Context, cmd *cobra.Command, formatter *format.Formatter, path string) error {
	content, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return withCode(ExitIOError, err)
	}

	res, err := formatter.Document(string(content))
	if err != nil {
		return withCode(ExitFailure, fmt.Errorf("format %s: %w", path, err))
	}
	if res.Skipped != nil {
		logging.Default().Warn("left file unchanged", logging.FieldPath, path, logging.FieldError, res.Skipped)
	}

	if _, err := io.WriteString(cmd.OutOrStdout(), res.Canonical); err != nil {
		return withCode(ExitIOError, fmt.Errorf("write stdout: %w", err))
	}
	return nil
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Package cli provides the Cobra command structure for mdfmt.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdfmt/internal/logging"
	"github.com/yaklabco/mdfmt/internal/ui/pretty"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalFlags are the persistent flags shared by all subcommands.
type globalFlags struct {
	debug   bool
	config  string
	color   string
	logFile string

	logCloser io.Closer
}

// NewRootCommand creates the root mdfmt command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "mdfmt",
		Short: "An opinionated canonical Markdown formatter",
		Long: `mdfmt rewrites Markdown into one canonical form.

Headings become ATX, paragraphs are wrapped to a fixed width, lists are
renumbered and re-indented, and code blocks pass through untouched. It
formats files from the command line and serves editors as a language
server over stdio.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return flags.setup()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return flags.teardown()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flags.config, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flags.color, "color", pretty.ColorAuto,
		"colorize output: auto, always, never")
	rootCmd.PersistentFlags().StringVar(&flags.logFile, "log-file", "",
		"write logs to this file instead of stderr")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return withCode(ExitInvalidUsage, err)
	})

	rootCmd.AddCommand(newFormatCommand(flags))
	rootCmd.AddCommand(newLSPCommand(flags, info))
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	applyHelp(rootCmd, &flags.color)

	return rootCmd
}

func (g *globalFlags) setup() error {
	if !pretty.ValidColorMode(g.color) {
		return usageErrorf("invalid --color %q: must be auto, always, or never", g.color)
	}

	level := ""
	if g.debug {
		level = "debug"
	}

	if g.logFile != "" {
		logger, closer, err := logging.NewFile(g.logFile, level)
		if err != nil {
			return withCode(ExitIOError, fmt.Errorf("open log file: %w", err))
		}
		logging.SetDefault(logger)
		g.logCloser = closer
		return nil
	}

	if level != "" {
		logging.SetLevel(level)
	}
	return nil
}

func (g *globalFlags) teardown() error {
	if g.logCloser == nil {
		return nil
	}
	err := g.logCloser.Close()
	g.logCloser = nil
	if err != nil {
		return withCode(ExitIOError, fmt.Errorf("close log file: %w", err))
	}
	return nil
}

// applyLogLevel applies the configured log level unless --debug overrides it.
func (g *globalFlags) applyLogLevel(level string) {
	if g.debug || level == "" {
		return
	}
	logging.SetLevel(level)
}

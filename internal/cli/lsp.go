package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdfmt/internal/logging"
	"github.com/yaklabco/mdfmt/internal/server"
	"github.com/yaklabco/mdfmt/pkg/config"
	"github.com/yaklabco/mdfmt/pkg/docstore"
)

type lspFlags struct {
	flavor        string
	width         int
	onUnsupported string
}

func newLSPCommand(global *globalFlags, info BuildInfo) *cobra.Command {
	flags := &lspFlags{}

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Run the language server on stdio",
		Long: `Run mdfmt as a Language Server Protocol server.

The server speaks JSON-RPC over standard input and output and answers
textDocument/formatting requests with the edits that make a document
canonical. Standard output carries the protocol, so use --log-file to
keep logs out of the editor's way.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLSP(cmd, global, flags, info)
		},
	}

	cmd.Flags().StringVar(&flags.flavor, "flavor", "", "Markdown flavor: commonmark, gfm")
	cmd.Flags().IntVar(&flags.width, "width", 0, "maximum paragraph line width (default 80)")
	cmd.Flags().StringVar(&flags.onUnsupported, "on-unsupported", "",
		"what to do with unsupported constructs: error, ignore")

	return cmd
}

func runLSP(cmd *cobra.Command, global *globalFlags, flags *lspFlags, info BuildInfo) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cliCfg := &config.Config{}
	if cmd.Flags().Changed("flavor") {
		cliCfg.Flavor = config.Flavor(flags.flavor)
	}
	if cmd.Flags().Changed("width") {
		if flags.width <= 0 {
			return usageErrorf("--width must be positive, got %d", flags.width)
		}
		cliCfg.Width = flags.width
	}
	if cmd.Flags().Changed("on-unsupported") {
		cliCfg.OnUnsupported = flags.onUnsupported
	}

	cfg, _, err := global.loadConfig(ctx, cliCfg)
	if err != nil {
		return err
	}

	formatter, err := newFormatter(cfg)
	if err != nil {
		return err
	}

	logger := logging.Default()
	if isTerminal(cmd.InOrStdin()) {
		logger.Info("waiting for a client on standard input")
	}

	srv := server.New(docstore.New(), formatter, logger, server.WithVersion(info.Version))
	if err := srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
		if errors.Is(err, server.ErrExitWithoutShutdown) {
			return withCode(ExitFailure, err)
		}
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

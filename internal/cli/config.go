package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/yaklabco/mdfmt/internal/configloader"
	"github.com/yaklabco/mdfmt/internal/logging"
	"github.com/yaklabco/mdfmt/pkg/config"
	"github.com/yaklabco/mdfmt/pkg/format"
)

// loadConfig resolves the effective configuration for a command, with
// cliCfg holding only the values set by flags.
func (g *globalFlags) loadConfig(ctx context.Context, cliCfg *config.Config) (*config.Config, string, error) {
	logger := logging.Default()

	workDir, err := os.Getwd()
	if err != nil {
		return nil, "", withCode(ExitIOError, fmt.Errorf("get working directory: %w", err))
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: g.config,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, "", withCode(ExitConfigError, fmt.Errorf("load configuration: %w", err))
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration",
			logging.FieldFiles, loadResult.LoadedFrom,
			logging.FieldConfig, loadResult.Paths.Explicit,
		)
	}

	cfg := loadResult.Config
	g.applyLogLevel(cfg.LogLevel)

	logger.Debug("configuration resolved",
		logging.FieldFlavor, cfg.Flavor,
		logging.FieldWidth, cfg.Width,
		logging.FieldPolicy, cfg.OnUnsupported,
		logging.FieldJobs, cfg.Jobs,
	)

	return cfg, workDir, nil
}

// newFormatter builds a formatter from a validated configuration.
func newFormatter(cfg *config.Config) (*format.Formatter, error) {
	policy, err := format.ParsePolicy(cfg.OnUnsupported)
	if err != nil {
		return nil, withCode(ExitConfigError, err)
	}

	return format.New(
		format.WithFlavor(string(cfg.Flavor)),
		format.WithWidth(cfg.Width),
		format.WithPolicy(policy),
	), nil
}

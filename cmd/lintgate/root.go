package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/lintgate/internal/config"
)

// cli carries state shared by every subcommand once PersistentPreRunE has run.
type cli struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "lintgate",
		Short: "Post diff-scoped lint results to pull requests",
		Long: `lintgate runs the configured linters over the files changed in a commit range,
keeps only the offenses on changed lines (plus every error), and reconciles the
result with the pull request's comment thread.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			c.cfg = cfg
			c.logger = logger
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", os.Getenv("LINTGATE_CONFIG"), "path to a TOML config file")

	root.AddCommand(newRunCmd(c))
	root.AddCommand(newServeCmd(c))
	root.AddCommand(newRunsCmd(c))

	return root
}

// newLogger builds the process logger from log_level and log_format.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	switch cfg.LogFormat {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q", cfg.LogFormat)
	}
}

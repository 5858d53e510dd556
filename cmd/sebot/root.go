package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sebot/internal/config"
	"sebot/internal/slogutil"
	"sebot/internal/version"
)

var (
	configFlag  string
	backendFlag string
	seedFlag    string
	verbosity   int
	quietFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "sebot",
	Short: "sebot - software engineering data for agents",
	Long: `sebot answers questions about a project's issue tracker, comments, events
and commits stored in a SmartSHARK-style document database. It exposes a
fixed catalog of functions to agents over MCP and from the command line.`,
	Version:       version.Info(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("sebot {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default .sebot/config.json)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Storage backend: mongo, sqlite or memory")
	rootCmd.PersistentFlags().StringVar(&seedFlag, "seed", "", "Seed file for the memory backend (JSON, comments allowed)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress log output")
}

// loadConfig reads configuration for the working directory and applies
// command-line overrides.
func loadConfig() (*config.Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(dir, configFlag)
	if err != nil {
		return nil, err
	}
	if backendFlag != "" {
		cfg.Backend = backendFlag
	}
	if seedFlag != "" {
		cfg.Memory.Seed = seedFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// cliLevel is the level implied by -v/-q, or 0 when neither was given so
// the configured level applies.
func cliLevel() slog.Level {
	if verbosity == 0 && !quietFlag {
		return 0
	}
	return slogutil.LevelFromVerbosity(verbosity, quietFlag)
}

// newLogger builds the command logger writing to w.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, func(), error) {
	logger, closer, err := slogutil.New(cfg, cliLevel(), w)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return logger, func() { _ = closer.Close() }, nil
}

// newContext returns a context cancelled on SIGINT or SIGTERM.
func newContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

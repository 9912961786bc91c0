// Package commands implements the missionctl CLI.
package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jholhewres/missionctl/pkg/missionctl/config"
)

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "missionctl",
		Short: "Mission Control dashboard tooling",
		Long: `missionctl streams the live state of a multi-agent orchestrator:
the task board, the activity feed, and per-agent heartbeat status.

Examples:
  missionctl watch
  missionctl watch --workspace prod-west --filter tasks
  missionctl serve --addr :7180`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "path to config file")
	root.PersistentFlags().Bool("verbose", false, "enable debug logging")

	root.AddCommand(newWatchCmd())
	root.AddCommand(newServeCmd())
	return root
}

// loadConfig resolves the config and builds the logger from it.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	level := slog.LevelInfo
	switch {
	case verbose, cfg.Logging.Level == "debug":
		level = slog.LevelDebug
	case cfg.Logging.Level == "warn":
		level = slog.LevelWarn
	case cfg.Logging.Level == "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return cfg, slog.New(handler), nil
}

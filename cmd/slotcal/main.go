package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"slotcal/internal/config"
	appLog "slotcal/internal/log"
)

// exitConflicts is returned by `check` when at least one conflict was found.
const exitConflicts = 2

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "slotcal",
	Short:         "slotcal - time slot arithmetic and calendar conflict checks",
	Long:          "slotcal rounds date-times to slot boundaries, compares time slots and reports overlapping events across ICS calendars.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logLevel != "" {
			appLog.SetLevel(appLog.ParseLevel(logLevel))
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "/etc/slotcal/config.yaml", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, error (overrides config if set)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it).
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", configPath)
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel == "" {
		appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))
	}
	appLog.Debug("effective config",
		"config_path", configPath,
		"granularity", cfg.Granularity.String(),
		"window_days", cfg.WindowDays,
		"skip_empty", cfg.SkipEmpty,
		"allow_touching", cfg.AllowTouching,
		"calendar_count", len(cfg.Calendars),
	)
	return cfg, nil
}

// exitError carries a non-zero exit status without an error message.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"slotcal/datetime"
	"slotcal/internal/check"
	appLog "slotcal/internal/log"
)

var checkFrom string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report overlapping events across the configured calendars",
	Long: `Load every calendar listed in the config file, round each event to the
configured granularity and report overlapping and duplicated slots within
window_days days starting at --from (default: today).

Exits with status 2 when conflicts are found.

Examples:
  slotcal check --config ./slotcal.yaml
  slotcal check --from 2025-03-03T00:00
`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkFrom, "from", "", "Start of the checked window (default: now)")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	from := datetime.Now()
	if checkFrom != "" {
		if from, err = parseDateTime(checkFrom); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := check.Run(ctx, cfg, from)
	if err != nil {
		appLog.Error("check failed", err)
		return err
	}
	if err := report.Write(cmd.OutOrStdout()); err != nil {
		return err
	}

	if len(report.Conflicts) > 0 {
		return exitError{code: exitConflicts}
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/golang-sql/civil"
	"github.com/spf13/cobra"

	"slotcal/datetime"
)

var roundTo string

var roundCmd = &cobra.Command{
	Use:   "round [datetime]",
	Short: "Round a date-time down to a slot boundary",
	Long: `Round a naive date-time (YYYY-MM-DDTHH:MM:SS) down to the start of the
enclosing minute, ten minutes, fifteen minutes, hour or day.

Without an argument the current local time is rounded.

Examples:
  slotcal round 2016-11-23T09:44:10 --to fifteen_minutes
  slotcal round --to day
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRound,
}

func init() {
	roundCmd.Flags().StringVar(&roundTo, "to", datetime.FifteenMinutes.String(),
		"Granularity: minute, ten_minutes, fifteen_minutes, hour, day")
	rootCmd.AddCommand(roundCmd)
}

func runRound(cmd *cobra.Command, args []string) error {
	g, err := datetime.ParseGranularity(roundTo)
	if err != nil {
		return err
	}

	dt := datetime.Now()
	if len(args) == 1 {
		if dt, err = parseDateTime(args[0]); err != nil {
			return err
		}
	}

	rounded, err := datetime.Round(dt, g)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), rounded)
	return err
}

// parseDateTime accepts YYYY-MM-DDTHH:MM[:SS[.fraction]].
func parseDateTime(s string) (civil.DateTime, error) {
	dt, err := civil.ParseDateTime(s)
	if err == nil {
		return dt, nil
	}
	if dt, err2 := civil.ParseDateTime(s + ":00"); err2 == nil {
		return dt, nil
	}
	return civil.DateTime{}, fmt.Errorf("invalid date-time %q: %w", s, err)
}

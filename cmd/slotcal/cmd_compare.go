package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"slotcal/timeslot"
)

var compareCmd = &cobra.Command{
	Use:   "compare <start1> <finish1> <start2> <finish2>",
	Short: "Show how two time slots relate",
	Long: `Build two time slots A and B and print every predicate for the pair.

Example:
  slotcal compare 2016-11-24T09:15 2016-11-24T09:45 2016-11-24T09:20 2016-11-24T09:50
`,
	Args: cobra.ExactArgs(4),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	a, err := slotFromArgs(args[0], args[1])
	if err != nil {
		return fmt.Errorf("slot A: %w", err)
	}
	b, err := slotFromArgs(args[2], args[3])
	if err != nil {
		return fmt.Errorf("slot B: %w", err)
	}

	rows := []struct {
		name  string
		value any
	}{
		{"A", a},
		{"B", b},
		{"A.duration", a.Duration()},
		{"B.duration", b.Duration()},
		{"A.empty", a.IsEmpty()},
		{"B.empty", b.IsEmpty()},
		{"compare", a.Compare(b)},
		{"equal", a.Equal(b)},
		{"overlaps", a.Overlaps(b)},
		{"A includes B", a.IncludesSlot(b)},
		{"B includes A", b.IncludesSlot(a)},
		{"A strictly includes B", a.StrictlyIncludes(b)},
		{"B strictly includes A", b.StrictlyIncludes(a)},
		{"exactly matches", a.ExactlyMatches(b)},
		{"starts before", a.StartsBefore(b)},
		{"starts after", a.StartsAfter(b)},
		{"ends before", a.EndsBefore(b)},
		{"ends after", a.EndsAfter(b)},
	}

	out := cmd.OutOrStdout()
	for _, r := range rows {
		if _, err := fmt.Fprintf(out, "%-22s %v\n", r.name, r.value); err != nil {
			return err
		}
	}
	return nil
}

func slotFromArgs(start, finish string) (timeslot.TimeSlot, error) {
	s, err := parseDateTime(start)
	if err != nil {
		return timeslot.TimeSlot{}, err
	}
	f, err := parseDateTime(finish)
	if err != nil {
		return timeslot.TimeSlot{}, err
	}
	return timeslot.New(s, f)
}

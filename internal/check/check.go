// Package check runs a conflict check over the configured calendars.
package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/golang-sql/civil"

	"slotcal/datetime"
	"slotcal/internal/config"
	"slotcal/internal/conflict"
	"slotcal/internal/ics"
	appLog "slotcal/internal/log"
	"slotcal/internal/model"
	"slotcal/timeslot"
)

// ErrNoCalendars is returned when the config lists no calendars.
var ErrNoCalendars = errors.New("no calendars configured")

// Report is the outcome of a single check.
type Report struct {
	Window     timeslot.TimeSlot
	Entries    []model.Entry
	Conflicts  []model.Conflict
	Duplicates map[timeslot.TimeSlot][]model.Entry

	// Invalid and Recurring list event UIDs, see ics.BuildResult.
	Invalid   []string
	Recurring []string

	// LoadErrors holds per-calendar failures; the check still ran on the
	// calendars that loaded.
	LoadErrors []error
}

// Window returns the slot [from's midnight, midnight days later].
func Window(from civil.DateTime, days int) (timeslot.TimeSlot, error) {
	start, err := datetime.Round(from, datetime.Day)
	if err != nil {
		return timeslot.TimeSlot{}, err
	}
	finish := civil.DateTime{Date: start.Date.AddDays(days)}
	return timeslot.New(start, finish)
}

// Run loads every configured calendar and reports conflicting entries
// within the window starting at from.
func Run(ctx context.Context, cfg *config.Config, from civil.DateTime) (*Report, error) {
	if len(cfg.Calendars) == 0 {
		return nil, ErrNoCalendars
	}

	window, err := Window(from, cfg.WindowDays)
	if err != nil {
		return nil, err
	}

	sources := make([]ics.Source, 0, len(cfg.Calendars))
	for _, c := range cfg.Calendars {
		sources = append(sources, ics.Source{ID: c.ID, Name: c.Name, Path: c.Path})
	}

	report := &Report{Window: window}

	loaded, loadErrs := ics.NewLoader().LoadAll(ctx, sources)
	report.LoadErrors = loadErrs
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var events []ics.ParsedEvent
	for _, res := range loaded {
		parsed, err := ics.ParseICS(res.Source, res.Body)
		if err != nil {
			report.LoadErrors = append(report.LoadErrors, fmt.Errorf("source %q: %w", res.Source.ID, err))
			continue
		}
		events = append(events, parsed...)
	}

	built, err := ics.BuildEntries(events, ics.BuildConfig{
		Granularity: cfg.Granularity,
		Window:      &window,
	})
	if err != nil {
		return nil, err
	}

	entries := built.Entries
	if cfg.SkipEmpty {
		entries = conflict.DropEmpty(entries)
	}

	report.Entries = entries
	report.Invalid = built.Invalid
	report.Recurring = built.Recurring
	report.Conflicts = conflict.Find(entries, conflict.Options{AllowTouching: cfg.AllowTouching})
	report.Duplicates = conflict.GroupDuplicates(entries)

	appLog.Info("check completed",
		"window", window.String(),
		"calendars", len(loaded),
		"entries", len(report.Entries),
		"conflicts", len(report.Conflicts),
		"load_errors", len(report.LoadErrors),
	)

	return report, nil
}

// Write prints a human-readable report.
func (r *Report) Write(w io.Writer) error {
	p := &printer{w: w}
	p.printf("window %s: %d entries, %d conflicts\n", r.Window, len(r.Entries), len(r.Conflicts))

	for _, c := range r.Conflicts {
		p.printf("  %-9s %s %s (%s)  <->  %s %s (%s)\n", c.Kind,
			c.First.Slot, label(c.First), c.First.SourceID,
			c.Second.Slot, label(c.Second), c.Second.SourceID)
	}

	if len(r.Duplicates) > 0 {
		slots := make([]timeslot.TimeSlot, 0, len(r.Duplicates))
		for s := range r.Duplicates {
			slots = append(slots, s)
		}
		timeslot.Sort(slots)

		p.printf("duplicates:\n")
		for _, s := range slots {
			p.printf("  %016x %s x%d\n", s.Hash(), s, len(r.Duplicates[s]))
		}
	}

	if len(r.Recurring) > 0 {
		p.printf("recurring events checked at first occurrence only: %v\n", sortedCopy(r.Recurring))
	}
	if len(r.Invalid) > 0 {
		p.printf("skipped events with end before start: %v\n", sortedCopy(r.Invalid))
	}
	for _, err := range r.LoadErrors {
		p.printf("error: %v\n", err)
	}
	return p.err
}

func label(e model.Entry) string {
	if e.Summary != "" {
		return e.Summary
	}
	return e.UID
}

func sortedCopy(s []string) []string {
	out := slices.Clone(s)
	slices.Sort(out)
	return out
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

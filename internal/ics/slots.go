package ics

import (
	"github.com/golang-sql/civil"

	"slotcal/datetime"
	appLog "slotcal/internal/log"
	"slotcal/internal/model"
	"slotcal/timeslot"
)

// BuildConfig controls how parsed events become slots.
type BuildConfig struct {
	// Granularity is applied to both endpoints.
	Granularity datetime.Granularity

	// Window, if non-nil, drops entries whose slot does not overlap it.
	Window *timeslot.TimeSlot
}

// BuildResult wraps the produced entries and the UIDs that were skipped.
type BuildResult struct {
	Entries []model.Entry
	// Invalid records UIDs whose end precedes their start.
	Invalid []string
	// Recurring records UIDs carrying an RRULE; only their first occurrence
	// is represented.
	Recurring []string
}

// BuildEntries rounds each event's endpoints down to cfg.Granularity and
// turns it into a model.Entry.
//
// Only the highest SEQUENCE of each UID (and RECURRENCE-ID) is kept. A
// RECURRENCE-ID override replaces the base occurrence it points at.
func BuildEntries(events []ParsedEvent, cfg BuildConfig) (BuildResult, error) {
	var result BuildResult

	events = latestRevisions(events)
	replaced := overriddenStarts(events)

	for _, ev := range events {
		if !ev.IsOverride && replaced[occurrenceKey{ev.Source.ID, ev.UID, ev.Start}] {
			appLog.Debug("occurrence replaced by override", "id", ev.Source.ID, "uid", ev.UID, "start", ev.Start.String())
			continue
		}

		raw, err := timeslot.New(ev.Start, ev.End)
		if err != nil {
			appLog.Error("ics event has invalid range", err, "id", ev.Source.ID, "uid", ev.UID)
			result.Invalid = append(result.Invalid, ev.UID)
			continue
		}

		slot, err := roundSlot(raw, cfg.Granularity)
		if err != nil {
			return result, err
		}

		if ev.RawRRule != "" {
			appLog.Debug("recurrence not expanded", "id", ev.Source.ID, "uid", ev.UID, "rrule", ev.RawRRule)
			result.Recurring = append(result.Recurring, ev.UID)
		}

		if cfg.Window != nil && !slot.Overlaps(*cfg.Window) {
			continue
		}

		result.Entries = append(result.Entries, model.Entry{
			SourceID: ev.Source.ID,
			UID:      ev.UID,
			Summary:  ev.Summary,
			Location: ev.Location,
			AllDay:   ev.AllDay,
			Slot:     slot,
		})
	}

	return result, nil
}

// occurrenceKey identifies one occurrence of a UID within a source. For a
// base event at is its DTSTART, for an override its RECURRENCE-ID.
type occurrenceKey struct {
	sourceID string
	uid      string
	at       civil.DateTime
}

// revisionKey identifies one VEVENT revision chain.
type revisionKey struct {
	sourceID   string
	uid        string
	override   bool
	recurrence civil.DateTime
}

// latestRevisions keeps, for every revision chain, the event with the
// highest SEQUENCE; later events win ties. Input order is preserved.
func latestRevisions(events []ParsedEvent) []ParsedEvent {
	latest := make(map[revisionKey]int, len(events))
	for i, ev := range events {
		k := revisionKey{ev.Source.ID, ev.UID, ev.IsOverride, ev.Recurrence}
		if j, ok := latest[k]; ok && events[j].Seq > ev.Seq {
			continue
		}
		latest[k] = i
	}

	out := make([]ParsedEvent, 0, len(latest))
	for i, ev := range events {
		k := revisionKey{ev.Source.ID, ev.UID, ev.IsOverride, ev.Recurrence}
		if latest[k] == i {
			out = append(out, ev)
		}
	}
	return out
}

// overriddenStarts returns the occurrences that an override replaces.
func overriddenStarts(events []ParsedEvent) map[occurrenceKey]bool {
	out := make(map[occurrenceKey]bool)
	for _, ev := range events {
		if ev.IsOverride {
			out[occurrenceKey{ev.Source.ID, ev.UID, ev.Recurrence}] = true
		}
	}
	return out
}

// roundSlot rounds both endpoints down. Rounding is monotone, so the result
// is always a valid slot.
func roundSlot(s timeslot.TimeSlot, g datetime.Granularity) (timeslot.TimeSlot, error) {
	start, err := datetime.Round(s.Start(), g)
	if err != nil {
		return timeslot.TimeSlot{}, err
	}
	finish, err := datetime.Round(s.Finish(), g)
	if err != nil {
		return timeslot.TimeSlot{}, err
	}
	return timeslot.New(start, finish)
}

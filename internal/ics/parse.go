package ics

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/golang-sql/civil"

	appLog "slotcal/internal/log"
)

// ParsedEvent is the normalized representation of a VEVENT. Start and End
// are naive wall-clock values in the local zone.
type ParsedEvent struct {
	Source Source

	UID string
	Seq int

	Summary  string
	Location string

	Start  civil.DateTime
	End    civil.DateTime
	AllDay bool

	// RawRRule is kept for reporting only; recurrences are not expanded.
	RawRRule string

	Recurrence civil.DateTime // RECURRENCE-ID as local wall clock, if IsOverride
	IsOverride bool           // true if this VEVENT replaces one occurrence
}

// ParseICS parses a single ICS payload into a list of ParsedEvent.
//
//   - Zoned values (TZID or UTC) are converted to the local zone before the
//     zone is dropped; floating values are taken as-is.
//   - All-day events are detected from the DTSTART value format and span
//     [date 00:00, next date 00:00] when DTEND is absent.
//   - A timed event without DTEND is a single instant.
func ParseICS(src Source, body []byte) ([]ParsedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "id", src.ID, "path", src.Path)
		return nil, err
	}

	events := make([]ParsedEvent, 0)

	for _, comp := range cal.Events() {
		ev, perr := parseVEvent(src, comp)
		if perr != nil {
			// Log and skip this event, but keep parsing others.
			appLog.Error("ics vevent parse failed", perr, "id", src.ID, "path", src.Path)
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "id", src.ID, "path", src.Path, "event_count", len(events))
	return events, nil
}

func parseVEvent(src Source, ve *ical.VEvent) (ParsedEvent, error) {
	var out ParsedEvent
	out.Source = src

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if seqProp := ve.GetProperty(ical.ComponentPropertySequence); seqProp != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(seqProp.Value)); err == nil {
			out.Seq = n
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	dtStartProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStartProp == nil {
		return out, errors.New("missing DTSTART")
	}
	out.AllDay = isAllDay(dtStartProp)

	var (
		start time.Time
		err   error
	)
	if out.AllDay {
		start, err = ve.GetAllDayStartAt()
	} else {
		start, err = ve.GetStartAt()
	}
	if err != nil {
		return out, err
	}

	end, err := ve.GetEndAt()
	switch {
	case err == nil:
	case errors.Is(err, ical.ErrorPropertyNotFound) && out.AllDay:
		end = start.AddDate(0, 0, 1)
	case errors.Is(err, ical.ErrorPropertyNotFound):
		end = start
	default:
		return out, err
	}

	out.Start = wallClock(start)
	out.End = wallClock(end)

	if rruleProp := ve.GetProperty(ical.ComponentPropertyRrule); rruleProp != nil {
		out.RawRRule = rruleProp.Value
	}
	if ridProp := ve.GetProperty(ical.ComponentPropertyRecurrenceId); ridProp != nil {
		if t, err := parseICSTime(ridProp); err == nil {
			out.Recurrence = wallClock(t)
			out.IsOverride = true
		}
	}

	return out, nil
}

// isAllDay reports VALUE=DATE or a DTSTART without a time part.
func isAllDay(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// parseICSTime parses a DATE or DATE-TIME property value, honoring TZID.
// Floating values are read in the local zone.
func parseICSTime(p *ical.IANAProperty) (time.Time, error) {
	v := strings.TrimSpace(p.Value)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	loc := time.Local
	if ids, ok := p.ICalParameters["TZID"]; ok && len(ids) > 0 {
		l, err := time.LoadLocation(ids[0])
		if err != nil {
			return time.Time{}, err
		}
		loc = l
	}

	switch {
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}

func wallClock(t time.Time) civil.DateTime {
	return civil.DateTimeOf(t.In(time.Local))
}

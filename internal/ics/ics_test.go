package ics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-sql/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotcal/datetime"
	"slotcal/timeslot"
)

func icsBody(events ...string) []byte {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//slotcal//test//EN",
	}
	lines = append(lines, events...)
	lines = append(lines, "END:VCALENDAR", "")
	return []byte(strings.Join(lines, "\r\n"))
}

func vevent(props ...string) string {
	return strings.Join(append(append([]string{"BEGIN:VEVENT", "DTSTAMP:20250101T000000Z"}, props...), "END:VEVENT"), "\r\n")
}

func civilAt(day, hour, minute int) civil.DateTime {
	return civil.DateTime{
		Date: civil.Date{Year: 2025, Month: time.March, Day: day},
		Time: civil.Time{Hour: hour, Minute: minute},
	}
}

var testSource = Source{ID: "work", Name: "Work", Path: "work.ics"}

func TestParseICS(t *testing.T) {
	body := icsBody(
		vevent("UID:standup", "SUMMARY:Standup", "LOCATION:Room 1", "SEQUENCE:2",
			"DTSTART:20250303T090700", "DTEND:20250303T092200"),
		vevent("UID:holiday", "SUMMARY:Holiday", "DTSTART;VALUE=DATE:20250304"),
		vevent("UID:reminder", "SUMMARY:Reminder", "DTSTART:20250305T120000"),
		vevent("UID:weekly", "SUMMARY:Weekly", "DTSTART:20250306T100000",
			"DTEND:20250306T110000", "RRULE:FREQ=WEEKLY;COUNT=4"),
		vevent("SUMMARY:No UID", "DTSTART:20250307T100000"),
	)

	events, err := ParseICS(testSource, body)
	require.NoError(t, err)
	require.Len(t, events, 4)

	standup := events[0]
	assert.Equal(t, "standup", standup.UID)
	assert.Equal(t, 2, standup.Seq)
	assert.Equal(t, "Standup", standup.Summary)
	assert.Equal(t, "Room 1", standup.Location)
	assert.Equal(t, civilAt(3, 9, 7), standup.Start)
	assert.Equal(t, civilAt(3, 9, 22), standup.End)
	assert.False(t, standup.AllDay)
	assert.Equal(t, testSource, standup.Source)

	holiday := events[1]
	assert.True(t, holiday.AllDay)
	assert.Equal(t, civilAt(4, 0, 0), holiday.Start)
	assert.Equal(t, civilAt(5, 0, 0), holiday.End)

	reminder := events[2]
	assert.Equal(t, reminder.Start, reminder.End)

	assert.Equal(t, "FREQ=WEEKLY;COUNT=4", events[3].RawRRule)
	assert.False(t, events[3].IsOverride)
}

func TestParseICSRecurrenceID(t *testing.T) {
	body := icsBody(
		vevent("UID:utc", "RECURRENCE-ID:20250303T080000Z",
			"DTSTART:20250303T080000Z", "DTEND:20250303T090000Z"),
		vevent("UID:day", "RECURRENCE-ID;VALUE=DATE:20250304", "DTSTART;VALUE=DATE:20250304"),
	)
	events, err := ParseICS(testSource, body)
	require.NoError(t, err)
	require.Len(t, events, 2)

	utc := events[0]
	assert.True(t, utc.IsOverride)
	assert.Equal(t, utc.Start, utc.Recurrence)

	day := events[1]
	assert.True(t, day.IsOverride)
	assert.Equal(t, civilAt(4, 0, 0), day.Recurrence)
}

func TestParseICSRejectsEmptyAndMalformed(t *testing.T) {
	_, err := ParseICS(testSource, nil)
	require.Error(t, err)

	_, err = ParseICS(testSource, []byte("not a calendar\r\n"))
	require.Error(t, err)
}

func TestBuildEntries(t *testing.T) {
	events := []ParsedEvent{
		{Source: testSource, UID: "standup", Start: civilAt(3, 9, 7), End: civilAt(3, 9, 22)},
		{Source: testSource, UID: "backwards", Start: civilAt(3, 11, 0), End: civilAt(3, 10, 0)},
		{Source: testSource, UID: "blip", Start: civilAt(3, 12, 1), End: civilAt(3, 12, 9)},
		{Source: testSource, UID: "weekly", Start: civilAt(3, 14, 0), End: civilAt(3, 15, 0), RawRRule: "FREQ=WEEKLY"},
		{Source: testSource, UID: "next-month", Start: civilAt(31, 9, 0), End: civilAt(31, 10, 0)},
	}

	window := timeslot.MustNew(civilAt(3, 0, 0), civilAt(10, 0, 0))
	res, err := BuildEntries(events, BuildConfig{
		Granularity: datetime.FifteenMinutes,
		Window:      &window,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"backwards"}, res.Invalid)
	assert.Equal(t, []string{"weekly"}, res.Recurring)

	require.Len(t, res.Entries, 3)
	assert.Equal(t, "standup", res.Entries[0].UID)
	assert.Equal(t, timeslot.MustNew(civilAt(3, 9, 0), civilAt(3, 9, 15)), res.Entries[0].Slot)
	assert.Equal(t, "work", res.Entries[0].SourceID)
	assert.Equal(t, "blip", res.Entries[1].UID)
	assert.True(t, res.Entries[1].Slot.IsEmpty())
	assert.Equal(t, "weekly", res.Entries[2].UID)
}

func TestBuildEntriesOverrideReplacesOccurrence(t *testing.T) {
	body := icsBody(
		vevent("UID:weekly", "SUMMARY:Weekly", "DTSTART:20250303T090000",
			"DTEND:20250303T100000", "RRULE:FREQ=WEEKLY"),
		vevent("UID:weekly", "SUMMARY:Weekly (room change)", "LOCATION:Room 2",
			"RECURRENCE-ID:20250303T090000", "DTSTART:20250303T090000", "DTEND:20250303T100000"),
	)
	events, err := ParseICS(testSource, body)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[1].IsOverride)
	assert.Equal(t, civilAt(3, 9, 0), events[1].Recurrence)

	res, err := BuildEntries(events, BuildConfig{Granularity: datetime.FifteenMinutes})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "Weekly (room change)", res.Entries[0].Summary)
	assert.Equal(t, "Room 2", res.Entries[0].Location)
}

func TestBuildEntriesOverrideOfOtherOccurrence(t *testing.T) {
	events := []ParsedEvent{
		{Source: testSource, UID: "weekly", Start: civilAt(3, 9, 0), End: civilAt(3, 10, 0), RawRRule: "FREQ=WEEKLY"},
		{Source: testSource, UID: "weekly", Start: civilAt(10, 11, 0), End: civilAt(10, 12, 0),
			IsOverride: true, Recurrence: civilAt(10, 9, 0)},
		{Source: Source{ID: "home"}, UID: "weekly", Start: civilAt(10, 9, 0), End: civilAt(10, 10, 0)},
	}
	res, err := BuildEntries(events, BuildConfig{Granularity: datetime.Minute})
	require.NoError(t, err)

	// The override points at a later occurrence and another source's event
	// shares the UID; nothing is replaced.
	require.Len(t, res.Entries, 3)
	assert.Equal(t, civilAt(3, 9, 0), res.Entries[0].Slot.Start())
	assert.Equal(t, civilAt(10, 11, 0), res.Entries[1].Slot.Start())
	assert.Equal(t, "home", res.Entries[2].SourceID)
}

func TestBuildEntriesKeepsHighestSequence(t *testing.T) {
	events := []ParsedEvent{
		{Source: testSource, UID: "review", Seq: 1, Summary: "Review v1", Start: civilAt(3, 9, 0), End: civilAt(3, 10, 0)},
		{Source: testSource, UID: "review", Seq: 3, Summary: "Review v3", Start: civilAt(3, 14, 0), End: civilAt(3, 15, 0)},
		{Source: testSource, UID: "review", Seq: 2, Summary: "Review v2", Start: civilAt(3, 11, 0), End: civilAt(3, 12, 0)},
		{Source: testSource, UID: "sync", Summary: "Sync", Start: civilAt(3, 9, 0), End: civilAt(3, 9, 30)},
		{Source: testSource, UID: "sync", Summary: "Sync (resent)", Start: civilAt(3, 9, 0), End: civilAt(3, 9, 30)},
	}
	res, err := BuildEntries(events, BuildConfig{Granularity: datetime.Minute})
	require.NoError(t, err)

	require.Len(t, res.Entries, 2)
	assert.Equal(t, "Review v3", res.Entries[0].Summary)
	assert.Equal(t, "Sync (resent)", res.Entries[1].Summary)
}

func TestBuildEntriesKeepsEmpty(t *testing.T) {
	events := []ParsedEvent{
		{Source: testSource, UID: "blip", Start: civilAt(3, 12, 1), End: civilAt(3, 12, 9)},
	}
	res, err := BuildEntries(events, BuildConfig{Granularity: datetime.TenMinutes})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.True(t, res.Entries[0].Slot.IsEmpty())
}

func TestBuildEntriesUnsupportedGranularity(t *testing.T) {
	events := []ParsedEvent{{UID: "x", Start: civilAt(3, 9, 0), End: civilAt(3, 10, 0)}}
	_, err := BuildEntries(events, BuildConfig{Granularity: datetime.Granularity(99)})
	require.ErrorIs(t, err, datetime.ErrUnsupportedGranularity)
}

func TestLoader(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.ics")
	require.NoError(t, os.WriteFile(good, icsBody(), 0o600))
	big := filepath.Join(dir, "big.ics")
	require.NoError(t, os.WriteFile(big, make([]byte, 64), 0o600))

	l := NewLoader()
	results, errs := l.LoadAll(context.Background(), []Source{
		{ID: "good", Path: good},
		{ID: "missing", Path: filepath.Join(dir, "missing.ics")},
		{ID: "dir", Path: dir},
		{ID: "empty"},
	})
	require.Len(t, results, 1)
	assert.Equal(t, "good", results[0].Source.ID)
	assert.Equal(t, icsBody(), results[0].Body)
	assert.Len(t, errs, 3)
	assert.ErrorIs(t, errs[0], os.ErrNotExist)

	l.MaxBytes = 16
	_, err := l.LoadOne(Source{ID: "big", Path: big})
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestLoaderStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, errs := NewLoader().LoadAll(ctx, []Source{{ID: "a", Path: "a.ics"}})
	assert.Empty(t, results)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], context.Canceled)
}

package model

import "slotcal/timeslot"

// Entry is a single calendar item reduced to its (rounded) time slot.
type Entry struct {
	SourceID string // calendar source ID
	UID      string // iCalendar UID

	Summary  string
	Location string

	AllDay bool

	Slot timeslot.TimeSlot
}

// ConflictKind classifies a pair of entries whose slots overlap.
type ConflictKind string

const (
	// ConflictOverlap means the slots share at least one instant.
	ConflictOverlap ConflictKind = "overlap"
	// ConflictDuplicate means the slots have identical endpoints.
	ConflictDuplicate ConflictKind = "duplicate"
)

// Conflict is an ordered pair of overlapping entries; First never sorts
// after Second.
type Conflict struct {
	First  Entry
	Second Entry
	Kind   ConflictKind
}

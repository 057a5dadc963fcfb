// Package conflict finds overlapping calendar entries.
package conflict

import (
	"slices"

	"slotcal/internal/model"
	"slotcal/timeslot"
)

// Options tunes which overlapping pairs Find reports.
type Options struct {
	// AllowTouching skips pairs of non-empty slots that only share an
	// endpoint, such as 09:00-10:00 followed by 10:00-11:00.
	AllowTouching bool
}

// Find returns every pair of entries whose slots overlap, ordered by the
// first entry's slot. Pairs with identical slots are reported as
// duplicates. The input slice is not modified.
func Find(entries []model.Entry, opts Options) []model.Conflict {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b model.Entry) int {
		return a.Slot.Compare(b.Slot)
	})

	var out []model.Conflict
	for i, a := range sorted {
		for _, b := range sorted[i+1:] {
			// Sorted by start: once b starts after a finishes, nothing
			// later can overlap a.
			if b.Slot.Start().After(a.Slot.Finish()) {
				break
			}
			if !a.Slot.Overlaps(b.Slot) {
				continue
			}
			if opts.AllowTouching && touching(a.Slot, b.Slot) {
				continue
			}
			kind := model.ConflictOverlap
			if a.Slot.ExactlyMatches(b.Slot) {
				kind = model.ConflictDuplicate
			}
			out = append(out, model.Conflict{First: a, Second: b, Kind: kind})
		}
	}
	return out
}

// touching reports back-to-back slots; a does not start after b.
func touching(a, b timeslot.TimeSlot) bool {
	return a.Finish() == b.Start() && !a.IsEmpty() && !b.IsEmpty()
}

// GroupDuplicates groups entries by identical slot. Only slots shared by at
// least two entries are returned.
func GroupDuplicates(entries []model.Entry) map[timeslot.TimeSlot][]model.Entry {
	groups := make(map[timeslot.TimeSlot][]model.Entry, len(entries))
	for _, e := range entries {
		groups[e.Slot] = append(groups[e.Slot], e)
	}
	for slot, group := range groups {
		if len(group) < 2 {
			delete(groups, slot)
		}
	}
	return groups
}

// DropEmpty returns the entries whose slot is not a single instant.
func DropEmpty(entries []model.Entry) []model.Entry {
	out := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Slot.IsEmpty() {
			out = append(out, e)
		}
	}
	return out
}

package timeslot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/golang-sql/civil"
)

// ErrInvalidRange is returned when a slot's start is after its finish.
var ErrInvalidRange = errors.New("timeslot: start is after finish")

// TimeSlot is a closed interval [start, finish] of naive date-time values.
//
// The zero value is the empty slot at the zero DateTime. TimeSlot is
// comparable, so == is endpoint equality and slots can be used as map keys.
type TimeSlot struct {
	start  civil.DateTime
	finish civil.DateTime
}

// Factory constructs a TimeSlot from its two endpoints.
type Factory func(start, finish civil.DateTime) (TimeSlot, error)

// New returns the slot [start, finish]. Equal endpoints produce an empty slot.
func New(start, finish civil.DateTime) (TimeSlot, error) {
	if start.After(finish) {
		return TimeSlot{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start, finish)
	}
	return TimeSlot{start: start, finish: finish}, nil
}

// FromTime builds a slot from the wall clocks of start and finish. The
// location of each value is discarded.
func FromTime(start, finish time.Time) (TimeSlot, error) {
	return New(civil.DateTimeOf(start), civil.DateTimeOf(finish))
}

// MustNew is like New but panics on an invalid range.
func MustNew(start, finish civil.DateTime) TimeSlot {
	ts, err := New(start, finish)
	if err != nil {
		panic(err)
	}
	return ts
}

// Start returns the first instant of the slot.
func (s TimeSlot) Start() civil.DateTime { return s.start }

// Finish returns the last instant of the slot.
func (s TimeSlot) Finish() civil.DateTime { return s.finish }

// IsEmpty reports whether the slot covers a single instant.
func (s TimeSlot) IsEmpty() bool {
	return s.start == s.finish
}

// Includes reports whether start <= dt <= finish.
func (s TimeSlot) Includes(dt civil.DateTime) bool {
	return !dt.Before(s.start) && !dt.After(s.finish)
}

// IncludesSlot reports whether both endpoints of other lie within s.
func (s TimeSlot) IncludesSlot(other TimeSlot) bool {
	return s.Includes(other.start) && s.Includes(other.finish)
}

// Overlaps reports whether s and other share at least one instant.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	return other.Includes(s.start) || other.Includes(s.finish) || s.IncludesSlot(other)
}

// StartsBefore reports whether s starts strictly earlier than other.
func (s TimeSlot) StartsBefore(other TimeSlot) bool { return s.start.Before(other.start) }

// StartsAfter reports whether s starts strictly later than other.
func (s TimeSlot) StartsAfter(other TimeSlot) bool { return s.start.After(other.start) }

// EndsBefore reports whether s finishes strictly earlier than other.
func (s TimeSlot) EndsBefore(other TimeSlot) bool { return s.finish.Before(other.finish) }

// EndsAfter reports whether s finishes strictly later than other.
func (s TimeSlot) EndsAfter(other TimeSlot) bool { return s.finish.After(other.finish) }

// StrictlyIncludes reports whether other lies inside s with room on both sides.
func (s TimeSlot) StrictlyIncludes(other TimeSlot) bool {
	return s.IncludesSlot(other) && s.StartsBefore(other) && s.EndsAfter(other)
}

// ExactlyMatches reports whether s and other have the same endpoints.
func (s TimeSlot) ExactlyMatches(other TimeSlot) bool {
	return s.IncludesSlot(other) && !s.StartsBefore(other) && !s.EndsAfter(other)
}

// Compare orders slots by start, then by finish. It returns -1, 0 or +1.
func (s TimeSlot) Compare(other TimeSlot) int {
	if c := compareDateTime(s.start, other.start); c != 0 {
		return c
	}
	return compareDateTime(s.finish, other.finish)
}

// Equal reports whether both endpoints are equal. It agrees with ==.
func (s TimeSlot) Equal(other TimeSlot) bool {
	return s == other
}

// Hash returns a fingerprint of the slot. Equal slots have equal hashes.
func (s TimeSlot) Hash() uint64 {
	var buf [2 * dateTimeSize]byte
	putDateTime(buf[:dateTimeSize], s.start)
	putDateTime(buf[dateTimeSize:], s.finish)
	return xxhash.Sum64(buf[:])
}

// Duration returns the wall-clock length of the slot.
func (s TimeSlot) Duration() time.Duration {
	return s.finish.In(time.UTC).Sub(s.start.In(time.UTC))
}

// String formats the slot as "[start, finish]".
func (s TimeSlot) String() string {
	return "[" + s.start.String() + ", " + s.finish.String() + "]"
}

// Sort sorts slots in place in ascending Compare order.
func Sort(slots []TimeSlot) {
	slices.SortFunc(slots, TimeSlot.Compare)
}

func compareDateTime(a, b civil.DateTime) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

// year, month, day, hour, minute, second, nanosecond
const dateTimeSize = 7 * 8

func putDateTime(b []byte, dt civil.DateTime) {
	fields := [7]int{
		dt.Date.Year, int(dt.Date.Month), dt.Date.Day,
		dt.Time.Hour, dt.Time.Minute, dt.Time.Second, dt.Time.Nanosecond,
	}
	for i, f := range fields {
		binary.BigEndian.PutUint64(b[i*8:], uint64(f))
	}
}

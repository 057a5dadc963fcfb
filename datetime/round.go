// Package datetime rounds naive date-time values down to fixed granularities.
package datetime

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-sql/civil"
)

// ErrUnsupportedGranularity is returned for a Granularity outside the
// defined constants.
var ErrUnsupportedGranularity = errors.New("datetime: unsupported granularity")

// Granularity selects the period a date-time is rounded down to.
type Granularity int

const (
	Minute Granularity = iota
	TenMinutes
	FifteenMinutes
	Hour
	Day
)

var granularityNames = map[Granularity]string{
	Minute:         "minute",
	TenMinutes:     "ten_minutes",
	FifteenMinutes: "fifteen_minutes",
	Hour:           "hour",
	Day:            "day",
}

func (g Granularity) String() string {
	if name, ok := granularityNames[g]; ok {
		return name
	}
	return fmt.Sprintf("granularity(%d)", int(g))
}

// Valid reports whether g is one of the defined constants.
func (g Granularity) Valid() bool {
	_, ok := granularityNames[g]
	return ok
}

// ParseGranularity parses the names produced by String, case-insensitively.
func ParseGranularity(s string) (Granularity, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for g, name := range granularityNames {
		if name == want {
			return g, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedGranularity, s)
}

func (g Granularity) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedGranularity, int(g))
	}
	return []byte(g.String()), nil
}

func (g *Granularity) UnmarshalText(text []byte) error {
	parsed, err := ParseGranularity(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Now returns the current local wall clock.
func Now() civil.DateTime {
	return civil.DateTimeOf(time.Now())
}

// Round truncates dt down to the start of the enclosing period of size g.
// Seconds and nanoseconds are always cleared. The calendar date is never
// changed.
func Round(dt civil.DateTime, g Granularity) (civil.DateTime, error) {
	t := civil.Time{Hour: dt.Time.Hour, Minute: dt.Time.Minute}

	switch g {
	case Minute:
	case TenMinutes:
		t.Minute -= t.Minute % 10
	case FifteenMinutes:
		t.Minute = quarterStart(t.Minute)
	case Hour:
		t.Minute = 0
	case Day:
		t = civil.Time{}
	default:
		return civil.DateTime{}, fmt.Errorf("%w: %d", ErrUnsupportedGranularity, int(g))
	}

	return civil.DateTime{Date: dt.Date, Time: t}, nil
}

// MustRound is like Round but panics on an unsupported granularity.
func MustRound(dt civil.DateTime, g Granularity) civil.DateTime {
	out, err := Round(dt, g)
	if err != nil {
		panic(err)
	}
	return out
}

func quarterStart(minute int) int {
	switch {
	case minute <= 14:
		return 0
	case minute <= 29:
		return 15
	case minute <= 44:
		return 30
	default:
		return 45
	}
}

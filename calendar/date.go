/*
Package calendar provides the calendar-day value types used by leave tracking.

PURPOSE:
  Leave is booked in whole calendar days. Raw "YYYY-MM-DD" strings are parsed
  once at the boundary into a Date, and every comparison after that works on
  the value type instead of on strings.

KEY TYPES:
  Date:  A validated calendar day (UTC midnight, no time-of-day component)
  Range: A closed interval [Start, End] of days, Start <= End

CONSTRUCTION:
  Dates are only built through Parse or New, so a zero Date always means
  "not set" and any non-zero Date is a real day on the calendar.

    d, err := calendar.Parse("2024-01-10")
    r, err := calendar.NewRange(d, d.AddDays(2))  // 3 days

SEE ALSO:
  - range.go: Range, overlap and duration
  - leave/validator.go: Uses Range for overlap and quota checks
*/
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the ISO-8601 calendar date layout used for input and storage.
const Layout = "2006-01-02"

var (
	// ErrMalformed is returned when a string is not a real YYYY-MM-DD date.
	ErrMalformed = errors.New("malformed date")

	// ErrInverted is returned when a range ends before it starts.
	ErrInverted = errors.New("end date before start date")
)

// =============================================================================
// DATE
// =============================================================================

// Date is a single calendar day.
type Date struct {
	t time.Time
}

// New returns the date for year, month and day. Out-of-range values are
// normalized the way time.Date normalizes them.
func New(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Parse parses a strict YYYY-MM-DD string. Impossible days such as
// 2024-02-30 are rejected.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return Date{t: t}, nil
}

// MustParse is Parse for tests and constants. It panics on error.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Today returns the current local day.
func Today() Date {
	now := time.Now()
	return New(now.Year(), now.Month(), now.Day())
}

// Comparison
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }
func (d Date) IsZero() bool { return d.t.IsZero() }

// Compare returns -1, 0 or +1.
func (d Date) Compare(other Date) int { return d.t.Compare(other.t) }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// DaysUntil returns the signed number of days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.t.Sub(d.t).Hours() / 24)
}

// Properties
func (d Date) Year() int { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int { return d.t.Day() }
func (d Date) Time() time.Time { return d.t }
func (d Date) String() string { return d.t.Format(Layout) }

// MarshalText implements encoding.TextMarshaler so dates serialize as
// YYYY-MM-DD in JSON.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

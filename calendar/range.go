package calendar

import "fmt"

// =============================================================================
// RANGE - closed interval of days
// =============================================================================

// Range is the closed interval [Start, End]. Both ends are booked days.
type Range struct {
	Start Date
	End   Date
}

// NewRange builds a range and rejects End < Start.
func NewRange(start, end Date) (Range, error) {
	if end.Before(start) {
		return Range{}, fmt.Errorf("%w: %s > %s", ErrInverted, start, end)
	}
	return Range{Start: start, End: end}, nil
}

// ParseRange parses both ends and validates their order.
func ParseRange(start, end string) (Range, error) {
	s, err := Parse(start)
	if err != nil {
		return Range{}, err
	}
	e, err := Parse(end)
	if err != nil {
		return Range{}, err
	}
	return NewRange(s, e)
}

// Days returns the inclusive day count, End - Start + 1.
func (r Range) Days() int {
	return r.Start.DaysUntil(r.End) + 1
}

// Contains reports whether d falls within [Start, End].
func (r Range) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Overlaps reports whether the two ranges share at least one day.
// Touching boundaries count: [1,5] and [5,9] overlap.
func (r Range) Overlaps(other Range) bool {
	return !(r.End.Before(other.Start) || r.Start.After(other.End))
}

// EachDay returns every day in the range in order.
func (r Range) EachDay() []Date {
	days := make([]Date, 0, r.Days())
	for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

func (r Range) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + "]"
}

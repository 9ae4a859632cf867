package domain

import (
	"fmt"
	"sort"
	"time"
)

// DayLayout is the calendar-day format used for activity records.
const DayLayout = "2006-01-02"

// Day is a calendar day with no time component, formatted YYYY-MM-DD.
// Values built through ParseDay or DayOf are always well formed.
type Day string

// ParseDay validates s and returns it as a Day.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil || t.Format(DayLayout) != s {
		return "", fmt.Errorf("%w: %q", ErrInvalidDay, s)
	}
	return Day(s), nil
}

// DayOf returns the calendar day of t in loc. A nil loc means UTC.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.UTC
	}
	return Day(t.In(loc).Format(DayLayout))
}

// Prev returns the calendar day before d.
func (d Day) Prev() Day {
	return d.AddDays(-1)
}

// AddDays shifts d by n calendar days (negative n moves backward).
func (d Day) AddDays(n int) Day {
	t, err := time.Parse(DayLayout, string(d))
	if err != nil {
		return d
	}
	return Day(t.AddDate(0, 0, n).Format(DayLayout))
}

func (d Day) String() string { return string(d) }

// DaySet is an unordered set of distinct calendar days.
type DaySet map[Day]struct{}

// NewDaySet builds a set from the given days; duplicates collapse.
func NewDaySet(days ...Day) DaySet {
	s := make(DaySet, len(days))
	for _, d := range days {
		s[d] = struct{}{}
	}
	return s
}

// Add inserts d into the set.
func (s DaySet) Add(d Day) { s[d] = struct{}{} }

// Has reports whether d is in the set.
func (s DaySet) Has(d Day) bool {
	_, ok := s[d]
	return ok
}

// Len returns the number of distinct days.
func (s DaySet) Len() int { return len(s) }

// Latest returns the most recent day in the set, or false if empty.
// YYYY-MM-DD sorts lexically in calendar order.
func (s DaySet) Latest() (Day, bool) {
	var latest Day
	for d := range s {
		if d > latest {
			latest = d
		}
	}
	return latest, latest != ""
}

// Sorted returns the days in ascending calendar order.
func (s DaySet) Sorted() []Day {
	out := make([]Day, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

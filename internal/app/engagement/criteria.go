package engagement

import (
	"slices"

	"github.com/ecoplus-hub/ecoplus/internal/domain"
)

// Facts is everything a badge criterion can be checked against: the
// triggering event plus server-side aggregates read at evaluation time.
type Facts struct {
	Event      domain.EventContext
	UniqueDays int
	Hour       int // server wall-clock hour, 0-23
}

// Matches reports whether facts satisfy every constraint set on c.
// A constraint that needs an absent optional field fails.
func Matches(c domain.Criteria, f Facts) bool {
	ev := f.Event

	if len(c.Events) > 0 && !slices.Contains(c.Events, ev.Type) {
		return false
	}
	if c.Subject != "" && ev.Subject != c.Subject {
		return false
	}
	if c.MinScore != nil && (ev.Score == nil || *ev.Score < *c.MinScore) {
		return false
	}
	if c.ExactScore != nil && (ev.Score == nil || *ev.Score != *c.ExactScore) {
		return false
	}
	if c.MinSubjectCount > 0 && (ev.SubjectCount == nil || *ev.SubjectCount < c.MinSubjectCount) {
		return false
	}
	if c.MinTotalQuizzes > 0 && (ev.TotalQuizzes == nil || *ev.TotalQuizzes < c.MinTotalQuizzes) {
		return false
	}
	if c.MinUniqueDays > 0 && f.UniqueDays < c.MinUniqueDays {
		return false
	}
	if c.FromHour != nil && f.Hour < *c.FromHour {
		return false
	}
	return true
}

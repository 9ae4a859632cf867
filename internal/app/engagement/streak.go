// Package engagement implements the EcoPlus engagement engine:
// daily streaks, the badge rule engine, activity logging, and levels.
package engagement

import (
	"context"
	"fmt"
	"time"

	"github.com/ecoplus-hub/ecoplus/internal/domain"
)

// ComputeStreak counts consecutive active days backward from today.
// A today with no activity yet does not break the streak: the walk starts
// from yesterday instead. The walk stops at the first missing day.
func ComputeStreak(days domain.DaySet, today domain.Day) int {
	if days.Len() == 0 {
		return 0
	}

	cursor := today
	if !days.Has(cursor) {
		cursor = cursor.Prev()
	}

	streak := 0
	for days.Has(cursor) {
		streak++
		cursor = cursor.Prev()
	}
	return streak
}

// Streak computes the streak together with the most recent active day.
func Streak(days domain.DaySet, today domain.Day) domain.StreakResult {
	res := domain.StreakResult{Streak: ComputeStreak(days, today)}
	if latest, ok := days.Latest(); ok {
		res.LastActiveDate = &latest
	}
	return res
}

// ActivityStore persists per-day activity records.
type ActivityStore interface {
	UpsertActivity(ctx context.Context, userID string, day domain.Day, at time.Time) (domain.ActivityRecord, error)
	ActivityDays(ctx context.Context, userID string) (domain.DaySet, error)
	ListActivity(ctx context.Context, userID string) ([]domain.ActivityRecord, error)
	UniqueActiveDays(ctx context.Context, userID string) (int, error)
}

// StreakService reads a user's activity days and computes the streak
// against today in the reference timezone.
type StreakService struct {
	store ActivityStore
	loc   *time.Location
	now   func() time.Time
}

// NewStreakService creates a streak service. A nil loc means UTC.
func NewStreakService(store ActivityStore, loc *time.Location) *StreakService {
	if loc == nil {
		loc = time.UTC
	}
	return &StreakService{store: store, loc: loc, now: time.Now}
}

// SetClock replaces the wall clock (tests).
func (s *StreakService) SetClock(now func() time.Time) { s.now = now }

// Today returns the current calendar day in the reference timezone.
func (s *StreakService) Today() domain.Day {
	return domain.DayOf(s.now(), s.loc)
}

// Current loads the user's activity days and returns the streak result.
func (s *StreakService) Current(ctx context.Context, userID string) (domain.StreakResult, error) {
	days, err := s.store.ActivityDays(ctx, userID)
	if err != nil {
		return domain.StreakResult{}, fmt.Errorf("load activity days: %w", err)
	}
	return Streak(days, s.Today()), nil
}

package engagement

import (
	"context"
	"fmt"

	"github.com/ecoplus-hub/ecoplus/internal/domain"
	"github.com/ecoplus-hub/ecoplus/internal/infra/metrics"
)

// ActivityService handles the daily activity heartbeat.
type ActivityService struct {
	store  ActivityStore
	streak *StreakService
	badges *BadgeEngine
}

// NewActivityService creates an activity service.
func NewActivityService(store ActivityStore, streak *StreakService, badges *BadgeEngine) *ActivityService {
	return &ActivityService{store: store, streak: streak, badges: badges}
}

// LogResult is returned by a heartbeat.
type LogResult struct {
	Record    domain.ActivityRecord `json:"-"`
	Streak    int                   `json:"streak"`
	NewBadges []string              `json:"newBadges"`
}

// Log records activity for today (creating or incrementing the day's
// record), recomputes the streak, and checks badges. Badge evaluation
// never fails the heartbeat.
func (a *ActivityService) Log(ctx context.Context, userID string) (LogResult, error) {
	now := a.streak.now()
	rec, err := a.store.UpsertActivity(ctx, userID, a.streak.Today(), now)
	if err != nil {
		return LogResult{}, fmt.Errorf("record activity: %w", err)
	}
	metrics.ActivityPings.Inc()

	res, err := a.streak.Current(ctx, userID)
	if err != nil {
		return LogResult{}, err
	}

	return LogResult{
		Record:    rec,
		Streak:    res.Streak,
		NewBadges: a.badges.CheckBadges(ctx, userID, domain.EventContext{Type: domain.EventActivity}),
	}, nil
}

// ActivityData is the user's full activity history with streak.
type ActivityData struct {
	ActivityLog    []domain.ActivityRecord `json:"activityLog"`
	Streak         int                     `json:"streak"`
	LastActiveDate *domain.Day             `json:"lastActiveDate"`
}

// Data returns all activity records ascending by day, plus the streak.
func (a *ActivityService) Data(ctx context.Context, userID string) (ActivityData, error) {
	records, err := a.store.ListActivity(ctx, userID)
	if err != nil {
		return ActivityData{}, fmt.Errorf("list activity: %w", err)
	}
	days := domain.NewDaySet()
	for _, r := range records {
		days.Add(r.Day)
	}
	res := Streak(days, a.streak.Today())
	if records == nil {
		records = []domain.ActivityRecord{}
	}
	return ActivityData{
		ActivityLog:    records,
		Streak:         res.Streak,
		LastActiveDate: res.LastActiveDate,
	}, nil
}

package engagement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ecoplus-hub/ecoplus/internal/domain"
	"github.com/ecoplus-hub/ecoplus/internal/infra/metrics"
)

// BadgeStore reads and extends a user's badge set.
// AddBadges is an atomic add-if-absent and returns only the names it inserted.
type BadgeStore interface {
	UserBadges(ctx context.Context, userID string) ([]string, error)
	AddBadges(ctx context.Context, userID string, names []string, at time.Time) ([]string, error)
}

// DayCounter counts a user's distinct active days.
type DayCounter interface {
	UniqueActiveDays(ctx context.Context, userID string) (int, error)
}

// QuizHistory aggregates a user's correctly answered questions.
type QuizHistory interface {
	SubjectCount(ctx context.Context, userID, subject string) (int, error)
	TotalQuizzes(ctx context.Context, userID string) (int, error)
}

// AwardHook is called after badges are persisted. It must not fail the caller.
type AwardHook func(ctx context.Context, userID string, earned []domain.BadgeDefinition)

// BadgeEngine evaluates the badge catalog against an event and the user's
// history, and grants badges not yet earned. Earned badges are never revoked.
type BadgeEngine struct {
	badges   BadgeStore
	days     DayCounter
	history  QuizHistory
	log      *zap.Logger
	now      func() time.Time
	nightLoc *time.Location
	onAward  []AwardHook
}

// NewBadgeEngine creates a badge engine over the given stores.
// history may be nil, in which case quiz aggregates come only from the event.
func NewBadgeEngine(badges BadgeStore, days DayCounter, history QuizHistory, log *zap.Logger) *BadgeEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &BadgeEngine{
		badges:   badges,
		days:     days,
		history:  history,
		log:      log,
		now:      time.Now,
		nightLoc: time.Local,
	}
}

// SetClock replaces the wall clock used for the night-time badge.
func (e *BadgeEngine) SetClock(now func() time.Time) { e.now = now }

// SetNightLocation sets the timezone whose wall-clock hour the night-time
// badge checks. Defaults to the server's local zone.
func (e *BadgeEngine) SetNightLocation(loc *time.Location) {
	if loc != nil {
		e.nightLoc = loc
	}
}

// OnAward registers a hook run after newly earned badges are persisted.
func (e *BadgeEngine) OnAward(h AwardHook) { e.onAward = append(e.onAward, h) }

// CheckBadges grants and returns newly earned badge names in catalog order.
// It never fails: unknown users and store errors yield an empty result.
func (e *BadgeEngine) CheckBadges(ctx context.Context, userID string, ev domain.EventContext) []string {
	earned, err := e.Evaluate(ctx, userID, ev)
	if err != nil {
		metrics.BadgeEvaluationFailures.Inc()
		e.log.Warn("badge evaluation failed",
			zap.String("user_id", userID),
			zap.String("event", string(ev.Type)),
			zap.Error(err))
		return []string{}
	}
	return earned
}

// Evaluate is CheckBadges with store errors returned instead of absorbed.
// An unknown user is not an error.
func (e *BadgeEngine) Evaluate(ctx context.Context, userID string, ev domain.EventContext) ([]string, error) {
	owned, err := e.badges.UserBadges(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load badges: %w", err)
	}
	has := make(map[string]bool, len(owned))
	for _, name := range owned {
		has[name] = true
	}

	facts, err := e.facts(ctx, userID, ev)
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, def := range catalog {
		if has[def.Name] {
			continue
		}
		if Matches(def.Criteria, facts) {
			candidates = append(candidates, def.Name)
		}
	}
	if len(candidates) == 0 {
		return []string{}, nil
	}

	added, err := e.badges.AddBadges(ctx, userID, candidates, e.now())
	if err != nil {
		return nil, fmt.Errorf("save badges: %w", err)
	}
	if len(added) == 0 {
		return []string{}, nil
	}

	defs := make([]domain.BadgeDefinition, 0, len(added))
	for _, name := range added {
		metrics.BadgesAwarded.WithLabelValues(name).Inc()
		if def, ok := BadgeByName(name); ok {
			defs = append(defs, def)
		}
	}
	e.log.Info("badges awarded", zap.String("user_id", userID), zap.Strings("badges", added))
	for _, h := range e.onAward {
		h(ctx, userID, defs)
	}
	return added, nil
}

// facts gathers the aggregates criteria are checked against. Quiz counts
// the caller left unset are computed from answer history.
func (e *BadgeEngine) facts(ctx context.Context, userID string, ev domain.EventContext) (Facts, error) {
	days, err := e.days.UniqueActiveDays(ctx, userID)
	if err != nil {
		return Facts{}, fmt.Errorf("count active days: %w", err)
	}

	if ev.Type == domain.EventQuiz && e.history != nil {
		if ev.SubjectCount == nil && ev.Subject != "" {
			n, err := e.history.SubjectCount(ctx, userID, ev.Subject)
			if err != nil {
				return Facts{}, fmt.Errorf("count subject quizzes: %w", err)
			}
			ev.SubjectCount = &n
		}
		if ev.TotalQuizzes == nil {
			n, err := e.history.TotalQuizzes(ctx, userID)
			if err != nil {
				return Facts{}, fmt.Errorf("count quizzes: %w", err)
			}
			ev.TotalQuizzes = &n
		}
	}

	return Facts{
		Event:      ev,
		UniqueDays: days,
		Hour:       e.now().In(e.nightLoc).Hour(),
	}, nil
}

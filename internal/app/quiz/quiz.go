// Package quiz serves the climate quiz: random question sets, answer
// verification with points, and the bundled question bank.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ecoplus-hub/ecoplus/internal/app/engagement"
	"github.com/ecoplus-hub/ecoplus/internal/domain"
	"github.com/ecoplus-hub/ecoplus/internal/infra/metrics"
	"github.com/ecoplus-hub/ecoplus/internal/infra/sqlite"
)

const (
	// SetSize is how many questions a random quiz contains.
	SetSize = 5
	// PointsPerCorrect is awarded for each correct answer.
	PointsPerCorrect = 20
)

// Service answers quiz requests.
type Service struct {
	db     *sqlite.DB
	badges *engagement.BadgeEngine
	log    *zap.Logger
	now    func() time.Time
}

// NewService creates a quiz service.
func NewService(db *sqlite.DB, badges *engagement.BadgeEngine, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, badges: badges, log: log, now: time.Now}
}

// Random returns up to SetSize questions. Correct answers are never
// serialized.
func (s *Service) Random(ctx context.Context) ([]domain.Question, error) {
	qs, err := s.db.RandomQuestions(ctx, SetSize)
	if err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	if qs == nil {
		qs = []domain.Question{}
	}
	return qs, nil
}

// VerifyResult is the outcome of one answer.
type VerifyResult struct {
	Success            bool     `json:"success"`
	NewTotalPoints     int      `json:"newTotalPoints"`
	CorrectOptionIndex int      `json:"correctOptionIndex"`
	CorrectOptionText  string   `json:"correctOptionText"`
	NewBadges          []string `json:"newBadges"`
}

// Verify checks an answer. For a signed-in user the answer is recorded in
// quiz history, a correct answer earns PointsPerCorrect, and badges are
// checked with a QUIZ event scored 100 or 0. An empty userID is an
// anonymous attempt and changes nothing.
func (s *Service) Verify(ctx context.Context, userID, questionID string, selected int) (VerifyResult, error) {
	q, err := s.db.GetQuestion(ctx, questionID)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("load question: %w", err)
	}
	if q == nil {
		return VerifyResult{}, domain.ErrQuestionNotFound
	}
	if selected < 0 || selected >= len(q.Options) {
		return VerifyResult{}, fmt.Errorf("%w: %d", domain.ErrInvalidOption, selected)
	}

	correct := selected == q.CorrectOptionIndex
	metrics.QuizAnswers.WithLabelValues(strconv.FormatBool(correct)).Inc()

	res := VerifyResult{
		Success:            correct,
		CorrectOptionIndex: q.CorrectOptionIndex,
		CorrectOptionText:  q.Options[q.CorrectOptionIndex],
		NewBadges:          []string{},
	}
	if userID == "" {
		return res, nil
	}

	err = s.db.RecordAttempt(ctx, domain.QuizAttempt{
		UserID:     userID,
		QuestionID: q.ID,
		Subject:    q.Subject,
		Correct:    correct,
		AnsweredAt: s.now(),
	})
	if errors.Is(err, domain.ErrUserNotFound) {
		return res, nil
	}
	if err != nil {
		return VerifyResult{}, fmt.Errorf("record attempt: %w", err)
	}

	if correct {
		res.NewTotalPoints, err = s.db.AddPoints(ctx, userID, PointsPerCorrect)
		if err != nil {
			return VerifyResult{}, fmt.Errorf("award points: %w", err)
		}
	}

	score := 0
	if correct {
		score = 100
	}
	res.NewBadges = s.badges.CheckBadges(ctx, userID, domain.EventContext{
		Type:    domain.EventQuiz,
		Subject: q.Subject,
		Score:   &score,
	})
	return res, nil
}

// Seed loads the bundled question bank. Without reset, a non-empty bank is
// left untouched. Returns the number of questions inserted.
func (s *Service) Seed(ctx context.Context, reset bool) (int, error) {
	if reset {
		if err := s.db.DeleteQuestions(ctx); err != nil {
			return 0, fmt.Errorf("clear questions: %w", err)
		}
	} else {
		n, err := s.db.CountQuestions(ctx)
		if err != nil {
			return 0, err
		}
		if n > 0 {
			return 0, nil
		}
	}

	qs := Bank()
	if err := s.db.InsertQuestions(ctx, qs); err != nil {
		return 0, fmt.Errorf("insert questions: %w", err)
	}
	s.log.Info("question bank seeded", zap.Int("count", len(qs)))
	return len(qs), nil
}

package domain

import "time"

// ─── Activity / Streak Types ────────────────────────────────────────────────

// ActivityRecord is one user's activity on one calendar day.
// The store keeps at most one record per (UserID, Day).
type ActivityRecord struct {
	UserID      string    `json:"userId"`
	Day         Day       `json:"date"`
	Count       int       `json:"count"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// StreakResult is the derived streak for display.
type StreakResult struct {
	Streak         int  `json:"streak"`
	LastActiveDate *Day `json:"lastActiveDate"`
}

// ─── Badge Types ────────────────────────────────────────────────────────────

// EventType names the user action that triggered badge evaluation.
type EventType string

const (
	EventQuiz     EventType = "QUIZ"
	EventActivity EventType = "ACTIVITY"
	EventLearn    EventType = "LEARN"
)

// EventContext describes the triggering action. Only Type is required;
// absent optional fields make any criterion that needs them fail.
type EventContext struct {
	Type         EventType `json:"type"`
	Subject      string    `json:"subject,omitempty"`
	Score        *int      `json:"score,omitempty"` // integer percentage 0-100
	SubjectCount *int      `json:"subjectCount,omitempty"`
	TotalQuizzes *int      `json:"totalQuizzes,omitempty"`
}

// Criteria is the data-driven rule a badge must satisfy. Zero-valued fields
// impose no constraint.
type Criteria struct {
	Events          []EventType `json:"events,omitempty"` // empty = any event
	Subject         string      `json:"subject,omitempty"`
	MinScore        *int        `json:"minScore,omitempty"`
	ExactScore      *int        `json:"exactScore,omitempty"`
	MinSubjectCount int         `json:"minSubjectCount,omitempty"`
	MinTotalQuizzes int         `json:"minTotalQuizzes,omitempty"`
	MinUniqueDays   int         `json:"minUniqueDays,omitempty"`
	FromHour        *int        `json:"fromHour,omitempty"` // wall-clock hour, inclusive
}

// BadgeDefinition is one entry of the static badge catalog. Users hold
// badges by Name, so names are unique and never renamed.
type BadgeDefinition struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Icon        string   `json:"icon"`
	Description string   `json:"description"`
	Criteria    Criteria `json:"criteria"`
}

// ─── Quiz Types ─────────────────────────────────────────────────────────────

// Question is a single multiple-choice quiz question.
type Question struct {
	ID                 string   `json:"id"`
	Text               string   `json:"question"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"-"`
	Subject            string   `json:"subject"`
}

// QuizAttempt records one answer. Badge aggregates count distinct
// correctly answered questions.
type QuizAttempt struct {
	UserID     string    `json:"userId"`
	QuestionID string    `json:"questionId"`
	Subject    string    `json:"subject"`
	Correct    bool      `json:"correct"`
	AnsweredAt time.Time `json:"answeredAt"`
}

// ─── Level Types ────────────────────────────────────────────────────────────

// Level is a points band with a display name and avatar.
type Level struct {
	Level     int    `json:"level"`
	Name      string `json:"name"`
	MinPoints int    `json:"minPoints"`
	Avatar    string `json:"avatar"`
}

// LevelProgress is a user's level with progress toward the next one.
type LevelProgress struct {
	Level
	Progress        float64 `json:"progress"`
	NextLevelPoints *int    `json:"nextLevelPoints"`
}

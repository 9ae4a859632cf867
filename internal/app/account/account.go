// Package account handles registration, login, profiles, and the
// leaderboard.
package account

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ecoplus-hub/ecoplus/internal/app/engagement"
	"github.com/ecoplus-hub/ecoplus/internal/app/journey"
	"github.com/ecoplus-hub/ecoplus/internal/domain"
	"github.com/ecoplus-hub/ecoplus/internal/infra/sqlite"
	"github.com/ecoplus-hub/ecoplus/internal/security"
)

// LeaderboardSize is how many users the leaderboard shows.
const LeaderboardSize = 50

var leaderboardGlyphs = []string{"🌿", "⚡", "🌍", "🌱", "🚴", "☀️", "🌳", "♻️"}

// Service manages accounts.
type Service struct {
	db       *sqlite.DB
	streaks  *engagement.StreakService
	journeys *journey.Service
	now      func() time.Time
}

// NewService creates an account service.
func NewService(db *sqlite.DB, streaks *engagement.StreakService, journeys *journey.Service) *Service {
	return &Service{db: db, streaks: streaks, journeys: journeys, now: time.Now}
}

// Register creates an account. Returns domain.ErrMobileTaken if the
// mobile number is registered.
func (s *Service) Register(ctx context.Context, fullName, mobileNo, password string) (*domain.User, error) {
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := domain.User{
		ID:           uuid.NewString(),
		FullName:     strings.TrimSpace(fullName),
		MobileNo:     strings.TrimSpace(mobileNo),
		PasswordHash: hash,
		Badges:       []string{},
		CreatedAt:    s.now(),
	}
	if err := s.db.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login checks credentials. Unknown mobile numbers and wrong passwords
// both yield domain.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, mobileNo, password string) (*domain.User, error) {
	u, err := s.db.GetUserByMobile(ctx, strings.TrimSpace(mobileNo))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := security.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, err
	}
	return u, nil
}

// Get returns a user or domain.ErrUserNotFound.
func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.db.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

// SetAvatar updates the user's avatar.
func (s *Service) SetAvatar(ctx context.Context, id, avatar string) error {
	return s.db.SetAvatar(ctx, id, strings.TrimSpace(avatar))
}

// ProfileStats summarizes a user's engagement and impact.
type ProfileStats struct {
	Streak         int     `json:"streak"`
	TotalSaved     float64 `json:"totalSaved"`
	TotalEmissions float64 `json:"totalEmissions"`
}

// Profile is a user's public profile.
type Profile struct {
	ID       string               `json:"id"`
	FullName string               `json:"fullName"`
	Avatar   string               `json:"avatar"`
	Points   int                  `json:"points"`
	Badges   []string             `json:"badges"`
	JoinedAt time.Time            `json:"joinedAt"`
	Stats    ProfileStats         `json:"stats"`
	Level    domain.LevelProgress `json:"level"`
}

// Profile assembles a user's public profile.
func (s *Service) Profile(ctx context.Context, id string) (*Profile, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	streak, err := s.streaks.Current(ctx, id)
	if err != nil {
		return nil, err
	}
	stats, err := s.journeys.Stats(ctx, id)
	if err != nil {
		return nil, err
	}
	avatar := u.Avatar
	level := engagement.LevelForPoints(u.Points)
	if avatar == "" {
		avatar = level.Avatar
	}
	return &Profile{
		ID:       u.ID,
		FullName: u.FullName,
		Avatar:   avatar,
		Points:   u.Points,
		Badges:   u.Badges,
		JoinedAt: u.CreatedAt,
		Stats: ProfileStats{
			Streak:         streak.Streak,
			TotalSaved:     stats.TotalSaved,
			TotalEmissions: stats.TotalEmissions,
		},
		Level: level,
	}, nil
}

// Leaderboard returns the top users by points.
func (s *Service) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	users, err := s.db.TopUsers(ctx, LeaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("top users: %w", err)
	}
	out := make([]domain.LeaderboardEntry, len(users))
	for i, u := range users {
		out[i] = domain.LeaderboardEntry{
			ID:     u.ID,
			Name:   u.FullName,
			Score:  u.Points,
			Avatar: leaderboardGlyph(u.FullName),
		}
	}
	return out, nil
}

// leaderboardGlyph picks a glyph from the name's length.
func leaderboardGlyph(name string) string {
	return leaderboardGlyphs[utf8.RuneCountInString(name)%len(leaderboardGlyphs)]
}

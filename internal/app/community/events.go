package community

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecoplus-hub/ecoplus/internal/app/engagement"
	"github.com/ecoplus-hub/ecoplus/internal/domain"
	"github.com/ecoplus-hub/ecoplus/internal/infra/sqlite"
)

// EventService manages volunteering events.
type EventService struct {
	db    *sqlite.DB
	notes *engagement.NotificationService
	log   *zap.Logger
	now   func() time.Time
}

// NewEventService creates an event service.
func NewEventService(db *sqlite.DB, notes *engagement.NotificationService, log *zap.Logger) *EventService {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventService{db: db, notes: notes, log: log, now: time.Now}
}

// CreateRequest describes a new event.
type CreateRequest struct {
	Name               string
	Date               time.Time
	Time               string
	Location           string
	RequiredVolunteers int
}

// Create stores an event owned by creatorID.
func (s *EventService) Create(ctx context.Context, creatorID string, req CreateRequest) (*domain.Event, error) {
	e := domain.Event{
		ID:                 uuid.NewString(),
		Name:               req.Name,
		Date:               req.Date,
		Time:               req.Time,
		Location:           req.Location,
		RequiredVolunteers: req.RequiredVolunteers,
		Creator:            domain.Author{ID: creatorID},
		CreatedAt:          s.now(),
	}
	if err := s.db.InsertEvent(ctx, e); err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return s.db.GetEvent(ctx, e.ID)
}

// List returns all events by ascending date.
func (s *EventService) List(ctx context.Context) ([]domain.Event, error) {
	events, err := s.db.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []domain.Event{}
	}
	return events, nil
}

// Join adds userID as a volunteer and notifies the creator, unless the
// creator joined their own event. A failed notification does not fail
// the join.
func (s *EventService) Join(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	if err := s.db.AddVolunteer(ctx, eventID, userID, s.now()); err != nil {
		return nil, err
	}
	event, err := s.db.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}

	if event.Creator.ID != userID {
		volunteer, err := s.db.GetUser(ctx, userID)
		if err != nil || volunteer == nil {
			s.log.Warn("volunteer lookup failed", zap.String("user_id", userID), zap.Error(err))
			return event, nil
		}
		msg := fmt.Sprintf("%s has joined your event %q. Mobile: %s", volunteer.FullName, event.Name, volunteer.MobileNo)
		if _, err := s.notes.Notify(ctx, event.Creator.ID, domain.NotifyVolunteerJoined, msg); err != nil {
			s.log.Warn("volunteer notification failed", zap.String("event_id", eventID), zap.Error(err))
		}
	}
	return event, nil
}

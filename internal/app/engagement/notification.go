package engagement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecoplus-hub/ecoplus/internal/domain"
)

// NotificationStore persists user notifications.
type NotificationStore interface {
	InsertNotification(ctx context.Context, n domain.Notification) error
	ListNotifications(ctx context.Context, recipient string) ([]domain.Notification, error)
	MarkAllRead(ctx context.Context, recipient string) (int64, error)
}

// NotificationService creates and lists in-app notifications.
type NotificationService struct {
	store NotificationStore
	now   func() time.Time
}

// NewNotificationService creates a notification service.
func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store, now: time.Now}
}

// Notify stores an unread notification for recipient.
func (n *NotificationService) Notify(ctx context.Context, recipient string, kind domain.NotificationType, message string) (domain.Notification, error) {
	notif := domain.Notification{
		ID:        uuid.NewString(),
		Recipient: recipient,
		Message:   message,
		Type:      kind,
		CreatedAt: n.now(),
	}
	if err := n.store.InsertNotification(ctx, notif); err != nil {
		return domain.Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	return notif, nil
}

// List returns the recipient's notifications, newest first.
func (n *NotificationService) List(ctx context.Context, recipient string) ([]domain.Notification, error) {
	list, err := n.store.ListNotifications(ctx, recipient)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Notification{}
	}
	return list, nil
}

// MarkAllRead marks every unread notification of the recipient as read.
func (n *NotificationService) MarkAllRead(ctx context.Context, recipient string) error {
	_, err := n.store.MarkAllRead(ctx, recipient)
	return err
}

// BadgeEarned is the payload of the badge:earned realtime event.
type BadgeEarned struct {
	UserID string                   `json:"userId"`
	Badges []domain.BadgeDefinition `json:"badges"`
}

// BadgeAwardHook returns an AwardHook that notifies the user of each new
// badge and broadcasts badge:earned. Failures are logged, never returned.
func BadgeAwardHook(notes *NotificationService, bus domain.Broadcaster, log *zap.Logger) AwardHook {
	if bus == nil {
		bus = domain.NopBroadcaster{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context, userID string, earned []domain.BadgeDefinition) {
		for _, def := range earned {
			msg := fmt.Sprintf("You earned the %s %s badge: %s", def.Icon, def.Name, def.Description)
			if _, err := notes.Notify(ctx, userID, domain.NotifyBadgeEarned, msg); err != nil {
				log.Warn("badge notification failed",
					zap.String("user_id", userID),
					zap.String("badge", def.Name),
					zap.Error(err))
			}
		}
		bus.Broadcast(domain.EventBadgeEarned, BadgeEarned{UserID: userID, Badges: earned})
	}
}

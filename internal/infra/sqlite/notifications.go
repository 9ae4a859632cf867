package sqlite

import (
	"context"

	"github.com/ecoplus-hub/ecoplus/internal/domain"
)

// ─── Notifications ──────────────────────────────────────────────────────────

// InsertNotification stores a notification.
func (d *DB) InsertNotification(ctx context.Context, n domain.Notification) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO notifications (id, recipient, message, type, read, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.Recipient, n.Message, string(n.Type), n.Read, millis(n.CreatedAt),
	)
	if isForeignKeyViolation(err) {
		return domain.ErrUserNotFound
	}
	return err
}

// ListNotifications returns a user's notifications, newest first.
func (d *DB) ListNotifications(ctx context.Context, recipient string) ([]domain.Notification, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, recipient, message, type, read, created_at
		FROM notifications WHERE recipient = ?
		ORDER BY created_at DESC, rowid DESC`, recipient)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var kind string
		var created int64
		if err := rows.Scan(&n.ID, &n.Recipient, &n.Message, &kind, &n.Read, &created); err != nil {
			return nil, err
		}
		n.Type = domain.NotificationType(kind)
		n.CreatedAt = fromMillis(created)
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkAllRead marks every unread notification of the user as read and
// returns how many changed.
func (d *DB) MarkAllRead(ctx context.Context, recipient string) (int64, error) {
	res, err := d.db.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE recipient = ? AND read = 0`, recipient)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

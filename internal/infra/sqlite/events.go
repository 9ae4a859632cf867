package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/ecoplus-hub/ecoplus/internal/domain"
)

// ─── Community Events ───────────────────────────────────────────────────────

const eventSelect = `
	SELECT e.id, e.name, e.date, e.time, e.location, e.required_volunteers, e.created_at,
	       u.id, u.full_name, u.points, u.avatar
	FROM events e JOIN users u ON u.id = e.creator_id`

// InsertEvent stores a new event created by e.Creator.ID.
func (d *DB) InsertEvent(ctx context.Context, e domain.Event) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO events (id, name, date, time, location, required_volunteers, creator_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, millis(e.Date), e.Time, e.Location, e.RequiredVolunteers, e.Creator.ID, millis(e.CreatedAt),
	)
	if isForeignKeyViolation(err) {
		return domain.ErrUserNotFound
	}
	return err
}

// GetEvent retrieves an event with its volunteers. Returns nil if not found.
func (d *DB) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	row := d.db.QueryRowContext(ctx, eventSelect+` WHERE e.id = ?`, id)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	vols, err := d.volunteersFor(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	e.Volunteers = orEmpty(vols[id])
	return e, nil
}

// ListEvents returns all events ordered by date ascending.
func (d *DB) ListEvents(ctx context.Context) ([]domain.Event, error) {
	rows, err := d.db.QueryContext(ctx, eventSelect+` ORDER BY e.date ASC, e.rowid ASC`)
	if err != nil {
		return nil, err
	}
	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		events = append(events, *e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return events, nil
	}

	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	vols, err := d.volunteersFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range events {
		events[i].Volunteers = orEmpty(vols[events[i].ID])
	}
	return events, nil
}

// AddVolunteer records userID as a volunteer for the event.
// Returns domain.ErrEventNotFound or domain.ErrAlreadyVolunteered.
func (d *DB) AddVolunteer(ctx context.Context, eventID, userID string, at time.Time) error {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE id = ?`, eventID).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrEventNotFound
	}

	res, err := d.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO event_volunteers (event_id, user_id, joined_at) VALUES (?, ?, ?)`,
		eventID, userID, millis(at),
	)
	if isForeignKeyViolation(err) {
		return domain.ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrAlreadyVolunteered
	}
	return nil
}

func (d *DB) volunteersFor(ctx context.Context, eventIDs []string) (map[string][]domain.Author, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT v.event_id, u.id, u.full_name, u.points, u.avatar
		FROM event_volunteers v JOIN users u ON u.id = v.user_id
		WHERE v.event_id IN (`+placeholders(len(eventIDs))+`)
		ORDER BY v.joined_at ASC, v.rowid ASC`,
		anySlice(eventIDs)...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.Author)
	for rows.Next() {
		var eventID string
		var a domain.Author
		if err := rows.Scan(&eventID, &a.ID, &a.FullName, &a.Points, &a.Avatar); err != nil {
			return nil, err
		}
		out[eventID] = append(out[eventID], a)
	}
	return out, rows.Err()
}

func scanEvent(s scanner) (*domain.Event, error) {
	var e domain.Event
	var date, created int64
	if err := s.Scan(&e.ID, &e.Name, &date, &e.Time, &e.Location, &e.RequiredVolunteers, &created,
		&e.Creator.ID, &e.Creator.FullName, &e.Creator.Points, &e.Creator.Avatar); err != nil {
		return nil, err
	}
	e.Date = fromMillis(date)
	e.CreatedAt = fromMillis(created)
	return &e, nil
}

func orEmpty(a []domain.Author) []domain.Author {
	if a == nil {
		return []domain.Author{}
	}
	return a
}

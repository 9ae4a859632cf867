package sqlite

import (
	"context"
	"time"

	"github.com/ecoplus-hub/ecoplus/internal/domain"
)

// ─── Activity Log ───────────────────────────────────────────────────────────

// UpsertActivity creates the (user, day) record with count 1, or increments
// the existing record's count. Concurrent heartbeats never produce a
// second record for the same day.
func (d *DB) UpsertActivity(ctx context.Context, userID string, day domain.Day, at time.Time) (domain.ActivityRecord, error) {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO activity_log (user_id, day, count, last_updated)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(user_id, day) DO UPDATE SET
			count = count + 1,
			last_updated = excluded.last_updated`,
		userID, string(day), millis(at),
	)
	if isForeignKeyViolation(err) {
		return domain.ActivityRecord{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.ActivityRecord{}, err
	}

	row := d.db.QueryRowContext(ctx,
		`SELECT user_id, day, count, last_updated FROM activity_log WHERE user_id = ? AND day = ?`,
		userID, string(day),
	)
	rec, err := scanActivity(row)
	if err != nil {
		return domain.ActivityRecord{}, err
	}
	return *rec, nil
}

// ActivityDays returns the set of days the user was active on.
func (d *DB) ActivityDays(ctx context.Context, userID string) (domain.DaySet, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT day FROM activity_log WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := domain.NewDaySet()
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		days.Add(domain.Day(day))
	}
	return days, rows.Err()
}

// ListActivity returns all activity records for a user, oldest day first.
func (d *DB) ListActivity(ctx context.Context, userID string) ([]domain.ActivityRecord, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT user_id, day, count, last_updated FROM activity_log WHERE user_id = ? ORDER BY day ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.ActivityRecord
	for rows.Next() {
		rec, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// UniqueActiveDays counts the distinct days the user was active on.
func (d *DB) UniqueActiveDays(ctx context.Context, userID string) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activity_log WHERE user_id = ?`, userID,
	).Scan(&n)
	return n, err
}

func scanActivity(s scanner) (*domain.ActivityRecord, error) {
	var rec domain.ActivityRecord
	var day string
	var updated int64
	if err := s.Scan(&rec.UserID, &day, &rec.Count, &updated); err != nil {
		return nil, err
	}
	rec.Day = domain.Day(day)
	rec.LastUpdated = fromMillis(updated)
	return &rec, nil
}

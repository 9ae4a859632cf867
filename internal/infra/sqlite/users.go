package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ecoplus-hub/ecoplus/internal/domain"
)

// ─── Users ──────────────────────────────────────────────────────────────────

const userColumns = `id, full_name, mobile_no, password_hash, points, avatar, created_at`

// CreateUser inserts a new user. Returns domain.ErrMobileTaken if the
// mobile number is already registered.
func (d *DB) CreateUser(ctx context.Context, u domain.User) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.FullName, u.MobileNo, u.PasswordHash, u.Points, u.Avatar, millis(u.CreatedAt),
	)
	if isUniqueViolation(err) {
		return domain.ErrMobileTaken
	}
	return err
}

// GetUser retrieves a user with their badges. Returns nil if not found.
func (d *DB) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil || u == nil {
		return u, err
	}
	u.Badges, err = d.listBadges(ctx, id)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByMobile retrieves a user by mobile number. Returns nil if not found.
func (d *DB) GetUserByMobile(ctx context.Context, mobile string) (*domain.User, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE mobile_no = ?`, mobile)
	u, err := scanUser(row)
	if err != nil || u == nil {
		return u, err
	}
	u.Badges, err = d.listBadges(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// AddPoints atomically adds delta to a user's points and returns the new total.
func (d *DB) AddPoints(ctx context.Context, id string, delta int) (int, error) {
	res, err := d.db.ExecContext(ctx, `UPDATE users SET points = points + ? WHERE id = ?`, delta, id)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, domain.ErrUserNotFound
	}
	var points int
	err = d.db.QueryRowContext(ctx, `SELECT points FROM users WHERE id = ?`, id).Scan(&points)
	return points, err
}

// SetAvatar updates a user's avatar.
func (d *DB) SetAvatar(ctx context.Context, id, avatar string) error {
	res, err := d.db.ExecContext(ctx, `UPDATE users SET avatar = ? WHERE id = ?`, avatar, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// TopUsers returns users ordered by points descending.
func (d *DB) TopUsers(ctx context.Context, limit int) ([]domain.User, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY points DESC, created_at ASC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// ─── Badges ─────────────────────────────────────────────────────────────────

// UserBadges returns the user's badge names in award order.
// Returns domain.ErrUserNotFound for an unknown user.
func (d *DB) UserBadges(ctx context.Context, userID string) ([]string, error) {
	var exists int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE id = ?`, userID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, domain.ErrUserNotFound
	}
	return d.listBadges(ctx, userID)
}

// AddBadges adds each name to the user's set if absent, in one transaction.
// Returns the names actually inserted, in input order; names already held
// (including ones granted concurrently) are skipped.
func (d *DB) AddBadges(ctx context.Context, userID string, names []string, at time.Time) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	added := make([]string, 0, len(names))
	for _, name := range names {
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO user_badges (user_id, name, awarded_at) VALUES (?, ?, ?)`,
			userID, name, millis(at),
		)
		if err != nil {
			return nil, fmt.Errorf("insert badge %q: %w", name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added = append(added, name)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return added, nil
}

func (d *DB) listBadges(ctx context.Context, userID string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT name FROM user_badges WHERE user_id = ? ORDER BY awarded_at ASC, rowid ASC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	badges := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		badges = append(badges, name)
	}
	return badges, rows.Err()
}

func scanUser(s scanner) (*domain.User, error) {
	var u domain.User
	var createdAt int64
	err := s.Scan(&u.ID, &u.FullName, &u.MobileNo, &u.PasswordHash, &u.Points, &u.Avatar, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil // Not found, no error
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = fromMillis(createdAt)
	return &u, nil
}

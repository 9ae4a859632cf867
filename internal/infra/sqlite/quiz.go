package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ecoplus-hub/ecoplus/internal/domain"
)

// ─── Questions ──────────────────────────────────────────────────────────────

const questionColumns = `id, question_text, options, correct_option_index, subject`

// InsertQuestions stores questions in one transaction.
func (d *DB) InsertQuestions(ctx context.Context, qs []domain.Question) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO questions (`+questionColumns+`) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, q := range qs {
		opts, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("encode options for %s: %w", q.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, q.ID, q.Text, string(opts), q.CorrectOptionIndex, q.Subject); err != nil {
			return fmt.Errorf("insert question %s: %w", q.ID, err)
		}
	}
	return tx.Commit()
}

// CountQuestions returns the size of the question bank.
func (d *DB) CountQuestions(ctx context.Context) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&n)
	return n, err
}

// DeleteQuestions empties the question bank.
func (d *DB) DeleteQuestions(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM questions`)
	return err
}

// RandomQuestions samples up to n questions.
func (d *DB) RandomQuestions(ctx context.Context, n int) ([]domain.Question, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+questionColumns+` FROM questions ORDER BY RANDOM() LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var qs []domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		qs = append(qs, *q)
	}
	return qs, rows.Err()
}

// GetQuestion retrieves a question. Returns nil if not found.
func (d *DB) GetQuestion(ctx context.Context, id string) (*domain.Question, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = ?`, id)
	q, err := scanQuestion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return q, err
}

func scanQuestion(s scanner) (*domain.Question, error) {
	var q domain.Question
	var opts string
	if err := s.Scan(&q.ID, &q.Text, &opts, &q.CorrectOptionIndex, &q.Subject); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(opts), &q.Options); err != nil {
		return nil, fmt.Errorf("decode options for %s: %w", q.ID, err)
	}
	return &q, nil
}

// ─── Answer History ─────────────────────────────────────────────────────────

// RecordAttempt appends an answer to the user's quiz history.
func (d *DB) RecordAttempt(ctx context.Context, a domain.QuizAttempt) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO quiz_attempts (user_id, question_id, subject, correct, answered_at) VALUES (?, ?, ?, ?, ?)`,
		a.UserID, a.QuestionID, a.Subject, a.Correct, millis(a.AnsweredAt),
	)
	if isForeignKeyViolation(err) {
		return domain.ErrUserNotFound
	}
	return err
}

// SubjectCount counts distinct questions the user answered correctly in subject.
func (d *DB) SubjectCount(ctx context.Context, userID, subject string) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT question_id) FROM quiz_attempts
		WHERE user_id = ? AND subject = ? AND correct = 1`,
		userID, subject,
	).Scan(&n)
	return n, err
}

// TotalQuizzes counts distinct questions the user answered correctly.
func (d *DB) TotalQuizzes(ctx context.Context, userID string) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT question_id) FROM quiz_attempts
		WHERE user_id = ? AND correct = 1`,
		userID,
	).Scan(&n)
	return n, err
}

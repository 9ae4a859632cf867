package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ecoplus-hub/ecoplus/internal/domain"
)

// ─── Posts ──────────────────────────────────────────────────────────────────

const postSelect = `
	SELECT p.id, p.content, p.images, p.created_at,
	       u.id, u.full_name, u.points, u.avatar
	FROM posts p JOIN users u ON u.id = p.user_id`

// InsertPost stores a new post.
func (d *DB) InsertPost(ctx context.Context, p domain.Post) error {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	raw, err := json.Marshal(images)
	if err != nil {
		return fmt.Errorf("encode images: %w", err)
	}
	_, err = d.db.ExecContext(ctx,
		`INSERT INTO posts (id, user_id, content, images, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.User.ID, p.Content, string(raw), millis(p.CreatedAt),
	)
	if isForeignKeyViolation(err) {
		return domain.ErrUserNotFound
	}
	return err
}

// GetPost retrieves a post with likes and comments. Returns nil if not found.
func (d *DB) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	row := d.db.QueryRowContext(ctx, postSelect+` WHERE p.id = ?`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := d.hydratePosts(ctx, []*domain.Post{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// ListPosts returns posts newest first. A non-empty authorID restricts the
// feed to that user's posts.
func (d *DB) ListPosts(ctx context.Context, authorID string) ([]domain.Post, error) {
	query := postSelect
	var args []any
	if authorID != "" {
		query += ` WHERE p.user_id = ?`
		args = append(args, authorID)
	}
	query += ` ORDER BY p.created_at DESC, p.rowid DESC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var ptrs []*domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		ptrs = append(ptrs, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := d.hydratePosts(ctx, ptrs); err != nil {
		return nil, err
	}
	posts := make([]domain.Post, len(ptrs))
	for i, p := range ptrs {
		posts[i] = *p
	}
	return posts, nil
}

// ToggleLike adds the user's like if absent and removes it otherwise.
// Returns the post's likes after the toggle.
func (d *DB) ToggleLike(ctx context.Context, postID, userID string, at time.Time) ([]string, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := postExists(ctx, tx, postID); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = ? AND user_id = ?`, postID, userID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO post_likes (post_id, user_id, liked_at) VALUES (?, ?, ?)`,
			postID, userID, millis(at),
		)
		if isForeignKeyViolation(err) {
			return nil, domain.ErrUserNotFound
		}
		if err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	likes, err := d.likesFor(ctx, []string{postID})
	if err != nil {
		return nil, err
	}
	if l := likes[postID]; l != nil {
		return l, nil
	}
	return []string{}, nil
}

// ─── Comments ───────────────────────────────────────────────────────────────

// AddComment appends a comment to a post and returns it with its author.
func (d *DB) AddComment(ctx context.Context, c domain.Comment) (domain.Comment, error) {
	if err := postExists(ctx, d.db, c.PostID); err != nil {
		return domain.Comment{}, err
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO post_comments (id, post_id, user_id, text, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.PostID, c.User.ID, c.Text, millis(c.CreatedAt),
	)
	if isForeignKeyViolation(err) {
		return domain.Comment{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.Comment{}, err
	}

	comments, err := d.commentsFor(ctx, []string{c.PostID})
	if err != nil {
		return domain.Comment{}, err
	}
	for _, got := range comments[c.PostID] {
		if got.ID == c.ID {
			return got, nil
		}
	}
	return domain.Comment{}, domain.ErrCommentNotFound
}

// ToggleReaction sets the user's reaction on a comment. Reacting again with
// the same type removes it; a different type replaces it. Returns the
// comment's reactions after the change.
func (d *DB) ToggleReaction(ctx context.Context, postID, commentID, userID, kind string) ([]domain.Reaction, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := postExists(ctx, tx, postID); err != nil {
		return nil, err
	}
	var n int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM post_comments WHERE id = ? AND post_id = ?`, commentID, postID,
	).Scan(&n)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, domain.ErrCommentNotFound
	}

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT type FROM comment_reactions WHERE comment_id = ? AND user_id = ?`, commentID, userID,
	).Scan(&current)
	switch {
	case err == sql.ErrNoRows:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO comment_reactions (comment_id, user_id, type) VALUES (?, ?, ?)`,
			commentID, userID, kind)
	case err != nil:
		return nil, err
	case current == kind:
		_, err = tx.ExecContext(ctx,
			`DELETE FROM comment_reactions WHERE comment_id = ? AND user_id = ?`, commentID, userID)
	default:
		_, err = tx.ExecContext(ctx,
			`UPDATE comment_reactions SET type = ? WHERE comment_id = ? AND user_id = ?`,
			kind, commentID, userID)
	}
	if isForeignKeyViolation(err) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	reactions, err := d.reactionsFor(ctx, []string{commentID})
	if err != nil {
		return nil, err
	}
	if r := reactions[commentID]; r != nil {
		return r, nil
	}
	return []domain.Reaction{}, nil
}

// ─── Hydration ──────────────────────────────────────────────────────────────

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func postExists(ctx context.Context, q querier, postID string) error {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE id = ?`, postID).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (d *DB) hydratePosts(ctx context.Context, posts []*domain.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	likes, err := d.likesFor(ctx, ids)
	if err != nil {
		return err
	}
	comments, err := d.commentsFor(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range posts {
		p.Likes = likes[p.ID]
		if p.Likes == nil {
			p.Likes = []string{}
		}
		p.Comments = comments[p.ID]
		if p.Comments == nil {
			p.Comments = []domain.Comment{}
		}
	}
	return nil
}

func (d *DB) likesFor(ctx context.Context, postIDs []string) (map[string][]string, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT post_id, user_id FROM post_likes WHERE post_id IN (`+placeholders(len(postIDs))+`)
		 ORDER BY liked_at ASC, rowid ASC`,
		anySlice(postIDs)...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var postID, userID string
		if err := rows.Scan(&postID, &userID); err != nil {
			return nil, err
		}
		out[postID] = append(out[postID], userID)
	}
	return out, rows.Err()
}

func (d *DB) commentsFor(ctx context.Context, postIDs []string) (map[string][]domain.Comment, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT c.id, c.post_id, c.text, c.created_at,
		       u.id, u.full_name, u.points, u.avatar
		FROM post_comments c JOIN users u ON u.id = c.user_id
		WHERE c.post_id IN (`+placeholders(len(postIDs))+`)
		ORDER BY c.created_at ASC, c.rowid ASC`,
		anySlice(postIDs)...,
	)
	if err != nil {
		return nil, err
	}

	var all []domain.Comment
	for rows.Next() {
		var c domain.Comment
		var created int64
		if err := rows.Scan(&c.ID, &c.PostID, &c.Text, &created,
			&c.User.ID, &c.User.FullName, &c.User.Points, &c.User.Avatar); err != nil {
			rows.Close()
			return nil, err
		}
		c.CreatedAt = fromMillis(created)
		all = append(all, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make(map[string][]domain.Comment)
	if len(all) == 0 {
		return out, nil
	}
	commentIDs := make([]string, len(all))
	for i, c := range all {
		commentIDs[i] = c.ID
	}
	reactions, err := d.reactionsFor(ctx, commentIDs)
	if err != nil {
		return nil, err
	}
	for _, c := range all {
		c.Reactions = reactions[c.ID]
		if c.Reactions == nil {
			c.Reactions = []domain.Reaction{}
		}
		out[c.PostID] = append(out[c.PostID], c)
	}
	return out, nil
}

func (d *DB) reactionsFor(ctx context.Context, commentIDs []string) (map[string][]domain.Reaction, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT comment_id, user_id, type FROM comment_reactions
		 WHERE comment_id IN (`+placeholders(len(commentIDs))+`) ORDER BY rowid ASC`,
		anySlice(commentIDs)...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.Reaction)
	for rows.Next() {
		var commentID string
		var r domain.Reaction
		if err := rows.Scan(&commentID, &r.UserID, &r.Type); err != nil {
			return nil, err
		}
		out[commentID] = append(out[commentID], r)
	}
	return out, rows.Err()
}

func scanPost(s scanner) (*domain.Post, error) {
	var p domain.Post
	var images string
	var created int64
	if err := s.Scan(&p.ID, &p.Content, &images, &created,
		&p.User.ID, &p.User.FullName, &p.User.Points, &p.User.Avatar); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(images), &p.Images); err != nil {
		return nil, fmt.Errorf("decode images for %s: %w", p.ID, err)
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	p.CreatedAt = fromMillis(created)
	return &p, nil
}

func anySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// Package community implements the social feed and volunteering events.
// Feed mutations are broadcast to realtime subscribers.
package community

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ecoplus-hub/ecoplus/internal/domain"
	"github.com/ecoplus-hub/ecoplus/internal/infra/sqlite"
)

// MaxImages caps the images attached to one post.
const MaxImages = 3

// DefaultReaction is used when a reaction type is omitted.
const DefaultReaction = "like"

// SocialService manages posts, likes, comments, and reactions.
type SocialService struct {
	db  *sqlite.DB
	bus domain.Broadcaster
	now func() time.Time
}

// NewSocialService creates a social service. A nil bus discards broadcasts.
func NewSocialService(db *sqlite.DB, bus domain.Broadcaster) *SocialService {
	if bus == nil {
		bus = domain.NopBroadcaster{}
	}
	return &SocialService{db: db, bus: bus, now: time.Now}
}

// CreatePost publishes a post and broadcasts post:create.
func (s *SocialService) CreatePost(ctx context.Context, userID, content string, images []string) (*domain.Post, error) {
	if len(images) > MaxImages {
		images = images[:MaxImages]
	}
	p := domain.Post{
		ID:        uuid.NewString(),
		User:      domain.Author{ID: userID},
		Content:   strings.TrimSpace(content),
		Images:    images,
		CreatedAt: s.now(),
	}
	if err := s.db.InsertPost(ctx, p); err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	created, err := s.db.GetPost(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, domain.ErrPostNotFound
	}
	s.bus.Broadcast(domain.EventPostCreate, created)
	return created, nil
}

// Feed returns every post, newest first.
func (s *SocialService) Feed(ctx context.Context) ([]domain.Post, error) {
	return s.list(ctx, "")
}

// UserPosts returns one user's posts, newest first.
func (s *SocialService) UserPosts(ctx context.Context, userID string) ([]domain.Post, error) {
	return s.list(ctx, userID)
}

func (s *SocialService) list(ctx context.Context, authorID string) ([]domain.Post, error) {
	posts, err := s.db.ListPosts(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	return posts, nil
}

// LikeUpdate is the post:like payload.
type LikeUpdate struct {
	PostID string   `json:"postId"`
	Likes  []string `json:"likes"`
}

// ToggleLike likes or unlikes a post and broadcasts post:like.
func (s *SocialService) ToggleLike(ctx context.Context, postID, userID string) ([]string, error) {
	likes, err := s.db.ToggleLike(ctx, postID, userID, s.now())
	if err != nil {
		return nil, err
	}
	s.bus.Broadcast(domain.EventPostLike, LikeUpdate{PostID: postID, Likes: likes})
	return likes, nil
}

// CommentUpdate is the post:comment payload.
type CommentUpdate struct {
	PostID  string         `json:"postId"`
	Comment domain.Comment `json:"comment"`
}

// Comment adds a comment and broadcasts post:comment.
func (s *SocialService) Comment(ctx context.Context, postID, userID, text string) (domain.Comment, error) {
	c, err := s.db.AddComment(ctx, domain.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		User:      domain.Author{ID: userID},
		Text:      strings.TrimSpace(text),
		CreatedAt: s.now(),
	})
	if err != nil {
		return domain.Comment{}, err
	}
	s.bus.Broadcast(domain.EventPostComment, CommentUpdate{PostID: postID, Comment: c})
	return c, nil
}

// ReactionUpdate is the comment:react payload.
type ReactionUpdate struct {
	PostID    string            `json:"postId"`
	CommentID string            `json:"commentId"`
	Reactions []domain.Reaction `json:"reactions"`
}

// React toggles the user's reaction on a comment and broadcasts comment:react.
func (s *SocialService) React(ctx context.Context, postID, commentID, userID, kind string) ([]domain.Reaction, error) {
	if kind == "" {
		kind = DefaultReaction
	}
	reactions, err := s.db.ToggleReaction(ctx, postID, commentID, userID, kind)
	if err != nil {
		return nil, err
	}
	s.bus.Broadcast(domain.EventCommentReact, ReactionUpdate{
		PostID: postID, CommentID: commentID, Reactions: reactions,
	})
	return reactions, nil
}

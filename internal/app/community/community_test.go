package community_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoplus-hub/ecoplus/internal/app/community"
	"github.com/ecoplus-hub/ecoplus/internal/app/engagement"
	"github.com/ecoplus-hub/ecoplus/internal/domain"
	"github.com/ecoplus-hub/ecoplus/internal/infra/sqlite"
)

type recordingBus struct {
	mu     sync.Mutex
	events []string
}

func (b *recordingBus) Broadcast(event string, _ any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func setup(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	for _, u := range []domain.User{
		{ID: "u1", FullName: "Asha", MobileNo: "9000000001"},
		{ID: "u2", FullName: "Ravi", MobileNo: "9000000002"},
	} {
		u.PasswordHash = "x"
		u.CreatedAt = time.Now()
		require.NoError(t, db.CreateUser(ctx, u))
	}
	return db
}

func TestSocial_FlowBroadcasts(t *testing.T) {
	db := setup(t)
	ctx := context.Background()
	bus := &recordingBus{}
	svc := community.NewSocialService(db, bus)

	post, err := svc.CreatePost(ctx, "u1", "  Cycled to work  ", []string{"/a.png", "/b.png", "/c.png", "/d.png"})
	require.NoError(t, err)
	assert.Equal(t, "Cycled to work", post.Content)
	assert.Len(t, post.Images, community.MaxImages)
	assert.Equal(t, "Asha", post.User.FullName)

	likes, err := svc.ToggleLike(ctx, post.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, likes)

	c, err := svc.Comment(ctx, post.ID, "u2", "Great!")
	require.NoError(t, err)

	reactions, err := svc.React(ctx, post.ID, c.ID, "u1", "")
	require.NoError(t, err)
	require.Len(t, reactions, 1)
	assert.Equal(t, community.DefaultReaction, reactions[0].Type)

	assert.Equal(t, []string{
		domain.EventPostCreate, domain.EventPostLike, domain.EventPostComment, domain.EventCommentReact,
	}, bus.events)

	feed, err := svc.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Len(t, feed[0].Comments, 1)

	mine, err := svc.UserPosts(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestSocial_MissingPost(t *testing.T) {
	db := setup(t)
	bus := &recordingBus{}
	svc := community.NewSocialService(db, bus)

	_, err := svc.ToggleLike(context.Background(), "missing", "u1")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	assert.Empty(t, bus.events)
}

func TestEvents_JoinNotifiesCreator(t *testing.T) {
	db := setup(t)
	ctx := context.Background()
	notes := engagement.NewNotificationService(db)
	svc := community.NewEventService(db, notes, nil)

	ev, err := svc.Create(ctx, "u1", community.CreateRequest{
		Name: "Beach Cleanup", Date: time.Now().Add(48 * time.Hour), Time: "09:00",
		Location: "Juhu", RequiredVolunteers: 5,
	})
	require.NoError(t, err)

	joined, err := svc.Join(ctx, ev.ID, "u2")
	require.NoError(t, err)
	require.Len(t, joined.Volunteers, 1)

	_, err = svc.Join(ctx, ev.ID, "u2")
	assert.ErrorIs(t, err, domain.ErrAlreadyVolunteered)

	list, err := notes.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.NotifyVolunteerJoined, list[0].Type)
	assert.Equal(t, `Ravi has joined your event "Beach Cleanup". Mobile: 9000000002`, list[0].Message)
}

func TestEvents_CreatorJoinNoNotification(t *testing.T) {
	db := setup(t)
	ctx := context.Background()
	notes := engagement.NewNotificationService(db)
	svc := community.NewEventService(db, notes, nil)

	ev, err := svc.Create(ctx, "u1", community.CreateRequest{
		Name: "Tree Planting", Date: time.Now(), Time: "07:30", Location: "Park", RequiredVolunteers: 2,
	})
	require.NoError(t, err)
	_, err = svc.Join(ctx, ev.ID, "u1")
	require.NoError(t, err)

	list, _ := notes.List(ctx, "u1")
	assert.Empty(t, list)

	_, err = svc.Join(ctx, "missing", "u1")
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

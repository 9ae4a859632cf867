package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ecoplus-hub/ecoplus/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *DB, id, name, mobile string) {
	t.Helper()
	err := db.CreateUser(context.Background(), domain.User{
		ID:           id,
		FullName:     name,
		MobileNo:     mobile,
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateUser(%s) error: %v", id, err)
	}
}

// ─── Database Lifecycle ─────────────────────────────────────────────────────

func TestOpen_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Join(dir, "ecoplus.db")); os.IsNotExist(err) {
		t.Error("ecoplus.db should exist")
	}
}

func TestOpen_Ping(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}
}

func TestOpen_Reopen(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	db.Close()

	db, err = Open(dir)
	if err != nil {
		t.Fatalf("second Open() error: %v", err)
	}
	defer db.Close()

	v, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion() error: %v", err)
	}
	if v != 1 {
		t.Errorf("SchemaVersion = %d, want 1", v)
	}
}

// ─── Users ──────────────────────────────────────────────────────────────────

func TestCreateUser_GetUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "u1", "Asha", "9000000001")

	u, err := db.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser() error: %v", err)
	}
	if u == nil {
		t.Fatal("GetUser() returned nil")
	}
	if u.FullName != "Asha" || u.MobileNo != "9000000001" {
		t.Errorf("got %+v", u)
	}
	if u.Badges == nil || len(u.Badges) != 0 {
		t.Errorf("Badges = %v, want empty non-nil", u.Badges)
	}

	byMobile, err := db.GetUserByMobile(ctx, "9000000001")
	if err != nil || byMobile == nil || byMobile.ID != "u1" {
		t.Errorf("GetUserByMobile() = %v, %v", byMobile, err)
	}
}

func TestCreateUser_DuplicateMobile(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "u1", "Asha", "9000000001")

	err := db.CreateUser(context.Background(), domain.User{
		ID: "u2", FullName: "Ravi", MobileNo: "9000000001", PasswordHash: "x", CreatedAt: time.Now(),
	})
	if !errors.Is(err, domain.ErrMobileTaken) {
		t.Errorf("error = %v, want ErrMobileTaken", err)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	db := newTestDB(t)
	u, err := db.GetUser(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetUser() error: %v", err)
	}
	if u != nil {
		t.Error("expected nil for missing user")
	}
}

func TestAddPoints(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "u1", "Asha", "9000000001")

	total, err := db.AddPoints(ctx, "u1", 20)
	if err != nil {
		t.Fatalf("AddPoints() error: %v", err)
	}
	total, _ = db.AddPoints(ctx, "u1", 20)
	if total != 40 {
		t.Errorf("total = %d, want 40", total)
	}

	if _, err := db.AddPoints(ctx, "ghost", 20); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
}

func TestTopUsers_OrderedByPoints(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "u1", "Asha", "1")
	seedUser(t, db, "u2", "Ravi", "2")
	seedUser(t, db, "u3", "Mei", "3")
	db.AddPoints(ctx, "u2", 100)
	db.AddPoints(ctx, "u3", 50)

	users, err := db.TopUsers(ctx, 2)
	if err != nil {
		t.Fatalf("TopUsers() error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("len = %d, want 2", len(users))
	}
	if users[0].ID != "u2" || users[1].ID != "u3" {
		t.Errorf("order = %s, %s; want u2, u3", users[0].ID, users[1].ID)
	}
}

// ─── Badges ─────────────────────────────────────────────────────────────────

func TestUserBadges_UnknownUser(t *testing.T) {
	db := newTestDB(t)
	_, err := db.UserBadges(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
}

func TestAddBadges_OnlyReturnsInserted(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "u1", "Asha", "1")
	now := time.Now()

	added, err := db.AddBadges(ctx, "u1", []string{"First Step", "Quiz Whiz"}, now)
	if err != nil {
		t.Fatalf("AddBadges() error: %v", err)
	}
	if len(added) != 2 {
		t.Fatalf("added = %v, want 2", added)
	}

	added, err = db.AddBadges(ctx, "u1", []string{"Quiz Whiz", "Night Owl"}, now)
	if err != nil {
		t.Fatalf("AddBadges() error: %v", err)
	}
	if len(added) != 1 || added[0] != "Night Owl" {
		t.Errorf("added = %v, want [Night Owl]", added)
	}

	badges, _ := db.UserBadges(ctx, "u1")
	want := []string{"First Step", "Quiz Whiz", "Night Owl"}
	if len(badges) != len(want) {
		t.Fatalf("badges = %v, want %v", badges, want)
	}
	for i := range want {
		if badges[i] != want[i] {
			t.Errorf("badges[%d] = %s, want %s", i, badges[i], want[i])
		}
	}
}

func TestAddBadges_ConcurrentGrantsOnce(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "u1", "Asha", "1")

	var wg sync.WaitGroup
	var mu sync.Mutex
	grants := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			added, err := db.AddBadges(ctx, "u1", []string{"First Step"}, time.Now())
			if err != nil {
				t.Errorf("AddBadges() error: %v", err)
				return
			}
			mu.Lock()
			grants += len(added)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if grants != 1 {
		t.Errorf("granted %d times, want 1", grants)
	}
}

// ─── Activity ───────────────────────────────────────────────────────────────

func TestUpsertActivity_IncrementsSameDay(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "u1", "Asha", "1")

	for i := 0; i < 3; i++ {
		if _, err := db.UpsertActivity(ctx, "u1", "2024-03-10", time.Now()); err != nil {
			t.Fatalf("UpsertActivity() error: %v", err)
		}
	}
	rec, err := db.UpsertActivity(ctx, "u1", "2024-03-11", time.Now())
	if err != nil {
		t.Fatalf("UpsertActivity() error: %v", err)
	}
	if rec.Count != 1 {
		t.Errorf("new day count = %d, want 1", rec.Count)
	}

	records, err := db.ListActivity(ctx, "u1")
	if err != nil {
		t.Fatalf("ListActivity() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].Day != "2024-03-10" || records[0].Count != 3 {
		t.Errorf("records[0] = %+v", records[0])
	}

	n, _ := db.UniqueActiveDays(ctx, "u1")
	if n != 2 {
		t.Errorf("UniqueActiveDays = %d, want 2", n)
	}
	days, _ := db.ActivityDays(ctx, "u1")
	if !days.Has("2024-03-11") {
		t.Error("ActivityDays missing 2024-03-11")
	}
}

func TestUpsertActivity_UnknownUser(t *testing.T) {
	db := newTestDB(t)
	_, err := db.UpsertActivity(context.Background(), "ghost", "2024-03-10", time.Now())
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
}

// ─── Quiz ───────────────────────────────────────────────────────────────────

func TestQuestions_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	qs := []domain.Question{
		{ID: "q1", Text: "Which gas?", Options: []string{"CO2", "O2"}, CorrectOptionIndex: 0, Subject: "Climate Science"},
		{ID: "q2", Text: "Largest ocean?", Options: []string{"Atlantic", "Pacific"}, CorrectOptionIndex: 1, Subject: "Oceans"},
	}
	if err := db.InsertQuestions(ctx, qs); err != nil {
		t.Fatalf("InsertQuestions() error: %v", err)
	}
	n, _ := db.CountQuestions(ctx)
	if n != 2 {
		t.Errorf("CountQuestions = %d, want 2", n)
	}

	q, err := db.GetQuestion(ctx, "q2")
	if err != nil || q == nil {
		t.Fatalf("GetQuestion() = %v, %v", q, err)
	}
	if q.CorrectOptionIndex != 1 || len(q.Options) != 2 || q.Options[1] != "Pacific" {
		t.Errorf("got %+v", q)
	}

	sample, _ := db.RandomQuestions(ctx, 5)
	if len(sample) != 2 {
		t.Errorf("RandomQuestions = %d, want 2", len(sample))
	}

	missing, err := db.GetQuestion(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("GetQuestion(missing) = %v, %v", missing, err)
	}
}

func TestQuizHistory_CountsDistinctCorrect(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "u1", "Asha", "1")
	now := time.Now()

	attempts := []domain.QuizAttempt{
		{UserID: "u1", QuestionID: "q1", Subject: "Oceans", Correct: true, AnsweredAt: now},
		{UserID: "u1", QuestionID: "q1", Subject: "Oceans", Correct: true, AnsweredAt: now},
		{UserID: "u1", QuestionID: "q2", Subject: "Oceans", Correct: false, AnsweredAt: now},
		{UserID: "u1", QuestionID: "q3", Subject: "Climate Science", Correct: true, AnsweredAt: now},
	}
	for _, a := range attempts {
		if err := db.RecordAttempt(ctx, a); err != nil {
			t.Fatalf("RecordAttempt() error: %v", err)
		}
	}

	oceans, _ := db.SubjectCount(ctx, "u1", "Oceans")
	if oceans != 1 {
		t.Errorf("SubjectCount(Oceans) = %d, want 1", oceans)
	}
	total, _ := db.TotalQuizzes(ctx, "u1")
	if total != 2 {
		t.Errorf("TotalQuizzes = %d, want 2", total)
	}
}

// ─── Journeys ───────────────────────────────────────────────────────────────

func TestJourneys(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "u1", "Asha", "1")
	mileage := 15.0
	base := time.Now()

	db.InsertJourney(ctx, domain.Journey{ID: "j1", UserID: "u1", TransportType: domain.TransportBus, Distance: 10, Emissions: 0.89, Date: base})
	db.InsertJourney(ctx, domain.Journey{ID: "j2", UserID: "u1", TransportType: domain.TransportCar, Distance: 30, FuelEfficiency: &mileage, Emissions: 4.62, Date: base.Add(time.Hour)})

	list, err := db.ListJourneys(ctx, "u1")
	if err != nil {
		t.Fatalf("ListJourneys() error: %v", err)
	}
	if len(list) != 2 || list[0].ID != "j2" {
		t.Fatalf("list = %+v, want j2 first", list)
	}
	if list[0].FuelEfficiency == nil || *list[0].FuelEfficiency != 15 {
		t.Error("fuel efficiency lost")
	}
	if list[1].FuelEfficiency != nil {
		t.Error("bus journey should have no fuel efficiency")
	}

	emissions, distance, err := db.JourneyTotals(ctx, "u1")
	if err != nil {
		t.Fatalf("JourneyTotals() error: %v", err)
	}
	if distance != 40 {
		t.Errorf("distance = %v, want 40", distance)
	}
	if emissions < 5.50 || emissions > 5.52 {
		t.Errorf("emissions = %v, want 5.51", emissions)
	}
}

// ─── Social ─────────────────────────────────────────────────────────────────

func TestPosts_LikeToggleAndComments(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "u1", "Asha", "1")
	seedUser(t, db, "u2", "Ravi", "2")
	now := time.Now()

	err := db.InsertPost(ctx, domain.Post{ID: "p1", User: domain.Author{ID: "u1"}, Content: "Cycled today", CreatedAt: now})
	if err != nil {
		t.Fatalf("InsertPost() error: %v", err)
	}

	likes, err := db.ToggleLike(ctx, "p1", "u2", now)
	if err != nil {
		t.Fatalf("ToggleLike() error: %v", err)
	}
	if len(likes) != 1 || likes[0] != "u2" {
		t.Errorf("likes = %v, want [u2]", likes)
	}
	likes, _ = db.ToggleLike(ctx, "p1", "u2", now)
	if len(likes) != 0 {
		t.Errorf("likes after unlike = %v, want empty", likes)
	}

	c, err := db.AddComment(ctx, domain.Comment{ID: "c1", PostID: "p1", User: domain.Author{ID: "u2"}, Text: "Nice", CreatedAt: now})
	if err != nil {
		t.Fatalf("AddComment() error: %v", err)
	}
	if c.User.FullName != "Ravi" {
		t.Errorf("comment author = %q, want Ravi", c.User.FullName)
	}

	post, err := db.GetPost(ctx, "p1")
	if err != nil || post == nil {
		t.Fatalf("GetPost() = %v, %v", post, err)
	}
	if post.User.FullName != "Asha" || len(post.Comments) != 1 {
		t.Errorf("post = %+v", post)
	}

	if _, err := db.ToggleLike(ctx, "missing", "u2", now); !errors.Is(err, domain.ErrPostNotFound) {
		t.Errorf("error = %v, want ErrPostNotFound", err)
	}
}

func TestToggleReaction(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "u1", "Asha", "1")
	now := time.Now()
	db.InsertPost(ctx, domain.Post{ID: "p1", User: domain.Author{ID: "u1"}, CreatedAt: now})
	db.AddComment(ctx, domain.Comment{ID: "c1", PostID: "p1", User: domain.Author{ID: "u1"}, Text: "hi", CreatedAt: now})

	r, _ := db.ToggleReaction(ctx, "p1", "c1", "u1", "like")
	if len(r) != 1 || r[0].Type != "like" {
		t.Fatalf("reactions = %v", r)
	}
	r, _ = db.ToggleReaction(ctx, "p1", "c1", "u1", "heart")
	if len(r) != 1 || r[0].Type != "heart" {
		t.Errorf("reactions after switch = %v", r)
	}
	r, _ = db.ToggleReaction(ctx, "p1", "c1", "u1", "heart")
	if len(r) != 0 {
		t.Errorf("reactions after toggle off = %v", r)
	}

	if _, err := db.ToggleReaction(ctx, "p1", "nope", "u1", "like"); !errors.Is(err, domain.ErrCommentNotFound) {
		t.Errorf("error = %v, want ErrCommentNotFound", err)
	}
}

func TestListPosts_ByAuthor(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "u1", "Asha", "1")
	seedUser(t, db, "u2", "Ravi", "2")
	now := time.Now()
	db.InsertPost(ctx, domain.Post{ID: "p1", User: domain.Author{ID: "u1"}, CreatedAt: now})
	db.InsertPost(ctx, domain.Post{ID: "p2", User: domain.Author{ID: "u2"}, CreatedAt: now.Add(time.Minute)})

	all, _ := db.ListPosts(ctx, "")
	if len(all) != 2 || all[0].ID != "p2" {
		t.Errorf("feed = %v, want p2 first", all)
	}
	mine, _ := db.ListPosts(ctx, "u1")
	if len(mine) != 1 || mine[0].ID != "p1" {
		t.Errorf("user feed = %v", mine)
	}
}

// ─── Events & Notifications ─────────────────────────────────────────────────

func TestEvents_Volunteer(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "u1", "Asha", "1")
	seedUser(t, db, "u2", "Ravi", "2")
	now := time.Now()

	err := db.InsertEvent(ctx, domain.Event{
		ID: "e1", Name: "Beach cleanup", Date: now, Time: "09:00", Location: "Juhu",
		RequiredVolunteers: 10, Creator: domain.Author{ID: "u1"}, CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("InsertEvent() error: %v", err)
	}

	if err := db.AddVolunteer(ctx, "e1", "u2", now); err != nil {
		t.Fatalf("AddVolunteer() error: %v", err)
	}
	if err := db.AddVolunteer(ctx, "e1", "u2", now); !errors.Is(err, domain.ErrAlreadyVolunteered) {
		t.Errorf("error = %v, want ErrAlreadyVolunteered", err)
	}
	if err := db.AddVolunteer(ctx, "missing", "u2", now); !errors.Is(err, domain.ErrEventNotFound) {
		t.Errorf("error = %v, want ErrEventNotFound", err)
	}

	e, _ := db.GetEvent(ctx, "e1")
	if e == nil || len(e.Volunteers) != 1 || e.Volunteers[0].FullName != "Ravi" {
		t.Errorf("event = %+v", e)
	}
	if e.Creator.FullName != "Asha" {
		t.Errorf("creator = %q", e.Creator.FullName)
	}
}

func TestNotifications_MarkAllRead(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "u1", "Asha", "1")
	now := time.Now()

	db.InsertNotification(ctx, domain.Notification{ID: "n1", Recipient: "u1", Message: "a", Type: domain.NotifySystem, CreatedAt: now})
	db.InsertNotification(ctx, domain.Notification{ID: "n2", Recipient: "u1", Message: "b", Type: domain.NotifyBadgeEarned, CreatedAt: now.Add(time.Second)})

	list, _ := db.ListNotifications(ctx, "u1")
	if len(list) != 2 || list[0].ID != "n2" {
		t.Fatalf("list = %+v, want n2 first", list)
	}

	changed, err := db.MarkAllRead(ctx, "u1")
	if err != nil {
		t.Fatalf("MarkAllRead() error: %v", err)
	}
	if changed != 2 {
		t.Errorf("changed = %d, want 2", changed)
	}
	list, _ = db.ListNotifications(ctx, "u1")
	for _, n := range list {
		if !n.Read {
			t.Errorf("%s still unread", n.ID)
		}
	}
}

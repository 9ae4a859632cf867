package engagement_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoplus-hub/ecoplus/internal/app/engagement"
	"github.com/ecoplus-hub/ecoplus/internal/domain"
	"github.com/ecoplus-hub/ecoplus/internal/infra/sqlite"
)

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, db *sqlite.DB, id string) {
	t.Helper()
	err := db.CreateUser(context.Background(), domain.User{
		ID: id, FullName: "User " + id, MobileNo: "m-" + id, PasswordHash: "x", CreatedAt: time.Now(),
	})
	require.NoError(t, err)
}

var noon = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

// newEngine returns a badge engine whose clock reads noon UTC.
func newEngine(db *sqlite.DB) *engagement.BadgeEngine {
	e := engagement.NewBadgeEngine(db, db, db, nil)
	e.SetNightLocation(time.UTC)
	e.SetClock(fixedClock(noon))
	return e
}

func intp(v int) *int { return &v }

// ═══════════════════════════════════════════════════════════════════════════
// Streak Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestComputeStreak(t *testing.T) {
	today := domain.Day("2024-03-10")
	tests := []struct {
		name string
		days []domain.Day
		want int
	}{
		{"empty", nil, 0},
		{"only today", []domain.Day{today}, 1},
		{"three ending yesterday", []domain.Day{"2024-03-09", "2024-03-08", "2024-03-07"}, 3},
		{"four ending today", []domain.Day{today, "2024-03-09", "2024-03-08", "2024-03-07"}, 4},
		{"gap stops walk", []domain.Day{"2024-03-09", "2024-03-07"}, 1},
		{"last active two days ago", []domain.Day{"2024-03-08", "2024-03-07"}, 0},
		{"across month boundary", []domain.Day{"2024-03-01", "2024-02-29", "2024-02-28"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engagement.ComputeStreak(domain.NewDaySet(tt.days...), today)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeStreak_LeapDay(t *testing.T) {
	days := domain.NewDaySet("2024-03-01", "2024-02-29", "2024-02-28")
	assert.Equal(t, 3, engagement.ComputeStreak(days, "2024-03-01"))
}

func TestStreak_LastActiveDate(t *testing.T) {
	res := engagement.Streak(domain.NewDaySet("2024-03-01", "2024-03-05"), "2024-03-10")
	assert.Equal(t, 0, res.Streak)
	require.NotNil(t, res.LastActiveDate)
	assert.Equal(t, domain.Day("2024-03-05"), *res.LastActiveDate)

	empty := engagement.Streak(domain.NewDaySet(), "2024-03-10")
	assert.Nil(t, empty.LastActiveDate)
}

func TestStreakService_UsesReferenceTimezone(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1")
	ctx := context.Background()

	kolkata, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	svc := engagement.NewStreakService(db, kolkata)
	// 20:00 UTC on the 9th is already the 10th in Kolkata.
	svc.SetClock(fixedClock(time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC)))
	assert.Equal(t, domain.Day("2024-03-10"), svc.Today())

	_, err = db.UpsertActivity(ctx, "u1", "2024-03-10", time.Now())
	require.NoError(t, err)
	res, err := svc.Current(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Streak)
}

// ═══════════════════════════════════════════════════════════════════════════
// Criteria Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestMatches_AbsentFieldFails(t *testing.T) {
	c := domain.Criteria{Events: []domain.EventType{domain.EventQuiz}, MinScore: intp(70)}
	f := engagement.Facts{Event: domain.EventContext{Type: domain.EventQuiz}}
	assert.False(t, engagement.Matches(c, f), "missing score must not satisfy minScore")

	f.Event.Score = intp(70)
	assert.True(t, engagement.Matches(c, f))
}

func TestMatches_EventFilter(t *testing.T) {
	c := domain.Criteria{Events: []domain.EventType{domain.EventQuiz, domain.EventLearn}, FromHour: intp(22)}
	assert.True(t, engagement.Matches(c, engagement.Facts{Event: domain.EventContext{Type: domain.EventLearn}, Hour: 23}))
	assert.False(t, engagement.Matches(c, engagement.Facts{Event: domain.EventContext{Type: domain.EventActivity}, Hour: 23}))
	assert.False(t, engagement.Matches(c, engagement.Facts{Event: domain.EventContext{Type: domain.EventQuiz}, Hour: 21}))
}

func TestCatalog_IsCopy(t *testing.T) {
	c := engagement.Catalog()
	require.Len(t, c, 8)
	c[0].Name = "mutated"

	again := engagement.Catalog()
	assert.Equal(t, "Seed Planter", again[0].Name)
	for i, def := range again {
		assert.Equal(t, i+1, def.ID, "catalog must be ascending by id")
	}

	def, ok := engagement.BadgeByID(7)
	require.True(t, ok)
	assert.Equal(t, "Net Zero Hero", def.Name)
	_, ok = engagement.BadgeByName("nope")
	assert.False(t, ok)
}

// ═══════════════════════════════════════════════════════════════════════════
// Badge Engine Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestCheckBadges_FirstQuiz(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1")
	ctx := context.Background()
	e := newEngine(db)

	got := e.CheckBadges(ctx, "u1", domain.EventContext{Type: domain.EventQuiz})
	assert.Equal(t, []string{"Seed Planter"}, got)

	owned, err := db.UserBadges(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Seed Planter"}, owned)
}

func TestCheckBadges_Idempotent(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1")
	ctx := context.Background()
	e := newEngine(db)
	ev := domain.EventContext{Type: domain.EventQuiz, Score: intp(100)}

	first := e.CheckBadges(ctx, "u1", ev)
	ownedAfterFirst, _ := db.UserBadges(ctx, "u1")

	second := e.CheckBadges(ctx, "u1", ev)
	ownedAfterSecond, _ := db.UserBadges(ctx, "u1")

	assert.Equal(t, []string{"Seed Planter", "Green Genius", "Net Zero Hero"}, first)
	assert.Empty(t, second)
	assert.NotNil(t, second)
	assert.Equal(t, ownedAfterFirst, ownedAfterSecond)
}

func TestCheckBadges_PerfectScoreSkipsOwned(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1")
	ctx := context.Background()
	_, err := db.AddBadges(ctx, "u1", []string{"Seed Planter", "Green Genius"}, noon)
	require.NoError(t, err)

	got := newEngine(db).CheckBadges(ctx, "u1", domain.EventContext{Type: domain.EventQuiz, Score: intp(100)})
	assert.Equal(t, []string{"Net Zero Hero"}, got)
}

func TestCheckBadges_LowOceansScore(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1")

	got := newEngine(db).CheckBadges(context.Background(), "u1",
		domain.EventContext{Type: domain.EventQuiz, Subject: "Oceans", Score: intp(40)})
	assert.Equal(t, []string{"Seed Planter"}, got)
}

func TestCheckBadges_OceanDefender(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1")

	got := newEngine(db).CheckBadges(context.Background(), "u1",
		domain.EventContext{Type: domain.EventQuiz, Subject: "Oceans", Score: intp(60)})
	assert.Equal(t, []string{"Seed Planter", "Ocean Defender"}, got)
}

func TestCheckBadges_HabitHeroOnSecondDay(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1")
	ctx := context.Background()
	e := newEngine(db)

	_, err := db.UpsertActivity(ctx, "u1", "2024-03-09", noon)
	require.NoError(t, err)
	assert.Empty(t, e.CheckBadges(ctx, "u1", domain.EventContext{Type: domain.EventActivity}))

	_, err = db.UpsertActivity(ctx, "u1", "2024-03-10", noon)
	require.NoError(t, err)
	assert.Equal(t, []string{"Habit Hero"}, e.CheckBadges(ctx, "u1", domain.EventContext{Type: domain.EventActivity}))
}

func TestCheckBadges_NightUsesServerClock(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1")
	ctx := context.Background()
	e := newEngine(db)
	e.SetClock(fixedClock(time.Date(2024, 3, 10, 22, 30, 0, 0, time.UTC)))

	assert.Equal(t, []string{"Nocturnal Nature"}, e.CheckBadges(ctx, "u1", domain.EventContext{Type: domain.EventLearn}))
}

func TestCheckBadges_NightLocation(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1")
	e := newEngine(db)
	// 17:00 UTC is 22:00 in a UTC+5 zone.
	e.SetNightLocation(time.FixedZone("UTC+5", 5*3600))
	e.SetClock(fixedClock(time.Date(2024, 3, 10, 17, 0, 0, 0, time.UTC)))

	got := e.CheckBadges(context.Background(), "u1", domain.EventContext{Type: domain.EventLearn})
	assert.Equal(t, []string{"Nocturnal Nature"}, got)
}

func TestCheckBadges_AggregatesFromHistory(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1")
	ctx := context.Background()
	e := newEngine(db)

	subjects := []string{"Climate Science", "Climate Science", "Oceans", "Energy", "Waste"}
	for i, s := range subjects {
		err := db.RecordAttempt(ctx, domain.QuizAttempt{
			UserID: "u1", QuestionID: string(rune('a' + i)), Subject: s, Correct: true, AnsweredAt: noon,
		})
		require.NoError(t, err)
	}

	got := e.CheckBadges(ctx, "u1", domain.EventContext{Type: domain.EventQuiz, Subject: "Climate Science"})
	assert.Equal(t, []string{"Seed Planter", "Climate Scholar", "Change Maker"}, got)
}

func TestCheckBadges_CallerAggregatesUsedAsGiven(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1")

	got := newEngine(db).CheckBadges(context.Background(), "u1", domain.EventContext{
		Type: domain.EventQuiz, Subject: "Climate Science", SubjectCount: intp(2), TotalQuizzes: intp(1),
	})
	assert.Equal(t, []string{"Seed Planter", "Climate Scholar"}, got)
}

func TestCheckBadges_UnknownUser(t *testing.T) {
	db := testDB(t)
	got := newEngine(db).CheckBadges(context.Background(), "ghost", domain.EventContext{Type: domain.EventQuiz})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCheckBadges_Concurrent(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1")
	ctx := context.Background()
	e := newEngine(db)

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := map[string]int{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, name := range e.CheckBadges(ctx, "u1", domain.EventContext{Type: domain.EventQuiz}) {
				mu.Lock()
				seen[name]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, map[string]int{"Seed Planter": 1}, seen)
	owned, _ := db.UserBadges(ctx, "u1")
	assert.Equal(t, []string{"Seed Planter"}, owned)
}

type failingBadges struct{}

func (failingBadges) UserBadges(context.Context, string) ([]string, error) {
	return nil, errors.New("disk I/O error")
}

func (failingBadges) AddBadges(context.Context, string, []string, time.Time) ([]string, error) {
	return nil, errors.New("disk I/O error")
}

func TestCheckBadges_StoreFailureYieldsEmpty(t *testing.T) {
	db := testDB(t)
	e := engagement.NewBadgeEngine(failingBadges{}, db, db, nil)

	got := e.CheckBadges(context.Background(), "u1", domain.EventContext{Type: domain.EventQuiz})
	assert.Equal(t, []string{}, got)

	_, err := e.Evaluate(context.Background(), "u1", domain.EventContext{Type: domain.EventQuiz})
	assert.Error(t, err)
}

type recordingBus struct {
	mu     sync.Mutex
	events []string
}

func (b *recordingBus) Broadcast(event string, _ any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func TestBadgeAwardHook_NotifiesAndBroadcasts(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1")
	ctx := context.Background()
	bus := &recordingBus{}
	notes := engagement.NewNotificationService(db)

	e := newEngine(db)
	e.OnAward(engagement.BadgeAwardHook(notes, bus, nil))

	e.CheckBadges(ctx, "u1", domain.EventContext{Type: domain.EventQuiz})
	e.CheckBadges(ctx, "u1", domain.EventContext{Type: domain.EventQuiz})

	list, err := notes.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.NotifyBadgeEarned, list[0].Type)
	assert.Contains(t, list[0].Message, "Seed Planter")
	assert.Equal(t, []string{domain.EventBadgeEarned}, bus.events)
}

// ═══════════════════════════════════════════════════════════════════════════
// Activity Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestActivityService_LogAndData(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1")
	ctx := context.Background()

	streak := engagement.NewStreakService(db, time.UTC)
	engine := newEngine(db)
	svc := engagement.NewActivityService(db, streak, engine)

	streak.SetClock(fixedClock(noon.AddDate(0, 0, -1)))
	res, err := svc.Log(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Streak)
	assert.Empty(t, res.NewBadges)

	streak.SetClock(fixedClock(noon))
	_, err = svc.Log(ctx, "u1")
	require.NoError(t, err)
	res, err = svc.Log(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Streak)
	assert.Equal(t, 2, res.Record.Count)

	data, err := svc.Data(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, data.ActivityLog, 2)
	assert.Equal(t, domain.Day("2024-03-09"), data.ActivityLog[0].Day)
	assert.Equal(t, 2, data.Streak)
	require.NotNil(t, data.LastActiveDate)
	assert.Equal(t, domain.Day("2024-03-10"), *data.LastActiveDate)

	owned, _ := db.UserBadges(ctx, "u1")
	assert.Equal(t, []string{"Habit Hero"}, owned)
}

func TestActivityService_DataEmpty(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1")
	svc := engagement.NewActivityService(db, engagement.NewStreakService(db, nil), newEngine(db))

	data, err := svc.Data(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, data.ActivityLog)
	assert.Empty(t, data.ActivityLog)
	assert.Equal(t, 0, data.Streak)
	assert.Nil(t, data.LastActiveDate)
}

// ═══════════════════════════════════════════════════════════════════════════
// Level Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestLevelForPoints(t *testing.T) {
	tests := []struct {
		points   int
		name     string
		progress float64
		next     *int
	}{
		{0, "Seedling", 0, intp(500)},
		{250, "Seedling", 50, intp(500)},
		{500, "Sprout", 0, intp(1000)},
		{1500, "Sapling", 50, intp(2000)},
		{3000, "Tree", 50, intp(4000)},
		{9000, "Forest", 100, nil},
	}
	for _, tt := range tests {
		lp := engagement.LevelForPoints(tt.points)
		assert.Equal(t, tt.name, lp.Name, "points=%d", tt.points)
		assert.InDelta(t, tt.progress, lp.Progress, 0.001, "points=%d", tt.points)
		assert.Equal(t, tt.next, lp.NextLevelPoints, "points=%d", tt.points)
	}
}

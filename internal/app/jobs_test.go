package app

import (
	"context"
	"errors"
	"fitness_assistant_bot/internal/domain/activity"
	"fitness_assistant_bot/internal/domain/calendar"
	"fitness_assistant_bot/internal/domain/fit"
	"fitness_assistant_bot/internal/domain/goal"
	"fitness_assistant_bot/internal/domain/meal"
	"fitness_assistant_bot/internal/domain/notification"
	"fitness_assistant_bot/internal/domain/user"
	"fitness_assistant_bot/internal/infra/memory"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stores struct {
	users         *memory.UserRepository
	activities    *memory.ActivityRepository
	meals         *memory.MealRepository
	goals         *memory.GoalRepository
	notifications *memory.NotificationRepository
	ledger        *NotificationLedger
}

func newStores(users ...*user.User) *stores {
	s := &stores{
		users:         memory.NewUserRepository(users...),
		activities:    memory.NewActivityRepository(),
		meals:         memory.NewMealRepository(),
		goals:         memory.NewGoalRepository(),
		notifications: memory.NewNotificationRepository(),
	}
	s.ledger = NewNotificationLedger(s.notifications, testLogger())
	return s
}

func (s *stores) ofType(typ notification.Type) []*notification.Notification {
	var out []*notification.Notification
	for _, n := range s.notifications.All() {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func testUser(id int64) *user.User {
	return &user.User{ID: id, ChatID: id * 100, Name: "Ann", Reminders: user.AllOn()}
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 10, hour, minute, 0, 0, time.UTC)
}

func (s *stores) activityJob(now time.Time) *ActivityReminderJob {
	return NewActivityReminderJob(s.users, s.activities, s.meals, s.goals, s.ledger, testLogger(), fixedClock(now))
}

func TestActivityReminderOncePerSlotPerDay(t *testing.T) {
	s := newStores(testUser(1))
	ctx := context.Background()

	for _, now := range []time.Time{at(9, 0), at(9, 2), at(9, 4)} {
		require.NoError(t, s.activityJob(now).Run(ctx))
	}

	morning := s.ofType(notification.TypeMorningActivity)
	require.Len(t, morning, 1)
	assert.Equal(t, at(9, 0), morning[0].ScheduledAt)
	assert.Contains(t, morning[0].Text, "no goal for today")
}

func TestActivityReminderRespectsWindowAndPreferences(t *testing.T) {
	muted := testUser(2)
	muted.Reminders.Lunch = false
	off := testUser(3)
	off.Reminders.Enabled = false
	s := newStores(testUser(1), muted, off)
	ctx := context.Background()

	require.NoError(t, s.activityJob(at(9, 5)).Run(ctx))
	assert.Empty(t, s.notifications.All(), "the slot window closes after five minutes")

	require.NoError(t, s.activityJob(at(13, 1)).Run(ctx))
	lunch := s.ofType(notification.TypeLunchTimeActivity)
	require.Len(t, lunch, 1)
	assert.Equal(t, int64(1), lunch[0].UserID)
}

func TestActivityReminderSkipsOutsideActiveHours(t *testing.T) {
	s := newStores(testUser(1))
	require.NoError(t, s.activityJob(time.Date(2024, 3, 10, 22, 1, 0, 0, time.UTC)).Run(context.Background()))
	assert.Empty(t, s.notifications.All())
}

func TestEveningReminderNeedsOpenGoal(t *testing.T) {
	s := newStores(testUser(1), testUser(2))
	ctx := context.Background()
	require.NoError(t, s.goals.Save(ctx, &goal.DailyGoal{UserID: 2, Day: "2024-03-10", TargetSteps: 10000, TargetCaloriesOut: 500}))
	require.NoError(t, s.activities.Add(ctx, &activity.Activity{UserID: 2, Day: "2024-03-10", Source: activity.SourceManual, Steps: 8500}))

	require.NoError(t, s.activityJob(at(19, 0)).Run(ctx))

	evening := s.ofType(notification.TypeEveningActivity)
	require.Len(t, evening, 1)
	assert.Equal(t, int64(2), evening[0].UserID)
	assert.Contains(t, evening[0].Text, "1500 steps")
	assert.Contains(t, evening[0].Text, "20-minute walk")
}

func seedGoalDay(t *testing.T, s *stores, steps, calIn, calOut int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.goals.Save(ctx, &goal.DailyGoal{
		UserID: 1, Day: "2024-03-10", TargetSteps: 10000, TargetCaloriesIn: 2000, TargetCaloriesOut: 500,
	}))
	require.NoError(t, s.activities.Add(ctx, &activity.Activity{
		UserID: 1, Day: "2024-03-10", Source: activity.SourceManual, Steps: steps, CaloriesBurned: calOut,
	}))
	require.NoError(t, s.meals.Add(ctx, &meal.Meal{UserID: 1, Name: "all day", Kind: meal.KindSnack, Calories: calIn, EatenAt: at(8, 0)}))
}

func TestDailyGoalCheckCompletesMetGoal(t *testing.T) {
	s := newStores(testUser(1))
	seedGoalDay(t, s, 10000, 1800, 600)
	ctx := context.Background()

	job := NewDailyGoalCheckJob(s.users, s.activities, s.meals, s.goals, s.ledger, testLogger(), fixedClock(at(15, 0)))
	require.NoError(t, job.Run(ctx))
	require.NoError(t, job.Run(ctx))

	g, err := s.goals.GetByUserAndDate(ctx, 1, "2024-03-10")
	require.NoError(t, err)
	assert.True(t, g.IsCompleted)
	assert.True(t, g.CompletedAt.Valid)
	assert.Len(t, s.ofType(notification.TypeDailyGoalAchieved), 1)
}

func TestDailyGoalCheckProgressAtEightPM(t *testing.T) {
	s := newStores(testUser(1))
	seedGoalDay(t, s, 9999, 1800, 600)
	ctx := context.Background()

	afternoon := NewDailyGoalCheckJob(s.users, s.activities, s.meals, s.goals, s.ledger, testLogger(), fixedClock(at(15, 0)))
	require.NoError(t, afternoon.Run(ctx))
	assert.Empty(t, s.notifications.All())

	for _, now := range []time.Time{at(20, 0), at(20, 10)} {
		job := NewDailyGoalCheckJob(s.users, s.activities, s.meals, s.goals, s.ledger, testLogger(), fixedClock(now))
		require.NoError(t, job.Run(ctx))
	}

	g, err := s.goals.GetByUserAndDate(ctx, 1, "2024-03-10")
	require.NoError(t, err)
	assert.False(t, g.IsCompleted)

	progress := s.ofType(notification.TypeDailyGoalProgress)
	require.Len(t, progress, 1)
	assert.Contains(t, progress[0].Text, "❌ Steps: 9999 / 10000")
	assert.Contains(t, progress[0].Text, "✅ Calories eaten: 1800 / 2000 max")
}

func mealUser() *user.User {
	u := testUser(1)
	breakfast := user.TimeOfDay(8 * 60)
	u.MealTimes.Breakfast = &breakfast
	return u
}

func TestMealReminderFiresInsideWindow(t *testing.T) {
	s := newStores(mealUser())
	ctx := context.Background()

	require.NoError(t, NewMealReminderJob(s.users, s.meals, s.ledger, testLogger(), fixedClock(at(8, 3))).Run(ctx))
	require.NoError(t, NewMealReminderJob(s.users, s.meals, s.ledger, testLogger(), fixedClock(at(8, 4))).Run(ctx))

	reminders := s.ofType(notification.TypeBreakfastReminder)
	require.Len(t, reminders, 1)
	assert.Contains(t, reminders[0].Text, "08:00")
}

func TestMealReminderSilentAfterWindow(t *testing.T) {
	s := newStores(mealUser())
	require.NoError(t, NewMealReminderJob(s.users, s.meals, s.ledger, testLogger(), fixedClock(at(8, 11))).Run(context.Background()))
	assert.Empty(t, s.notifications.All())
}

func TestMealReminderSilentWhenMealLogged(t *testing.T) {
	s := newStores(mealUser())
	ctx := context.Background()
	require.NoError(t, s.meals.Add(ctx, &meal.Meal{UserID: 1, Name: "toast", Kind: meal.KindBreakfast, Calories: 200, EatenAt: at(7, 15)}))

	require.NoError(t, NewMealReminderJob(s.users, s.meals, s.ledger, testLogger(), fixedClock(at(8, 3))).Run(ctx))
	assert.Empty(t, s.notifications.All())
}

func TestDispatchIsolatesFailedDelivery(t *testing.T) {
	s := newStores(testUser(1), testUser(2))
	ctx := context.Background()
	now := at(10, 0)

	first, err := s.ledger.Schedule(ctx, 1, notification.TypeMorningActivity, "first", now.Add(-2*time.Minute))
	require.NoError(t, err)
	second, err := s.ledger.Schedule(ctx, 2, notification.TypeMorningActivity, "second", now.Add(-time.Minute))
	require.NoError(t, err)
	orphan, err := s.ledger.Schedule(ctx, 99, notification.TypeMorningActivity, "orphan", now.Add(-time.Minute))
	require.NoError(t, err)

	client := &fakeTelegramClient{failFor: map[int64]bool{100: true}}
	job := NewNotificationDispatchJob(s.ledger, s.users, client, testLogger(), fixedClock(now))
	require.NoError(t, job.Run(ctx))

	require.Len(t, client.sent, 1)
	assert.Equal(t, sentMessage{chatID: 200, text: "second"}, client.sent[0])

	byID := map[string]*notification.Notification{}
	for _, n := range s.notifications.All() {
		byID[n.ID] = n
	}
	assert.False(t, byID[first].IsSent)
	assert.True(t, byID[second].IsSent)
	assert.Equal(t, now, byID[second].SentAt.Time)
	assert.False(t, byID[orphan].IsSent)
}

type fakeFitProvider struct {
	daily      *fit.DailyActivity
	refreshed  int
	fetchedFor []string
}

func (p *fakeFitProvider) AuthURL(string) string { return "" }

func (p *fakeFitProvider) ExchangeCode(context.Context, string) (*fit.Token, error) {
	return nil, errors.New("not used")
}

func (p *fakeFitProvider) RefreshToken(_ context.Context, rt string) (*fit.Token, error) {
	p.refreshed++
	return &fit.Token{AccessToken: "fresh", Expiry: at(23, 0)}, nil
}

func (p *fakeFitProvider) GetDailyActivity(_ context.Context, accessToken string, _ time.Time) (*fit.DailyActivity, error) {
	p.fetchedFor = append(p.fetchedFor, accessToken)
	d := *p.daily
	return &d, nil
}

func fitUser(expiresAt time.Time, refreshToken string) *user.User {
	u := testUser(1)
	u.Fit = &user.FitCredential{AccessToken: "stale", RefreshToken: refreshToken, ExpiresAt: expiresAt}
	return u
}

func TestFitSyncRefreshesAndUpserts(t *testing.T) {
	s := newStores(fitUser(at(9, 0), "refresh-1"), testUser(2))
	ctx := context.Background()
	provider := &fakeFitProvider{daily: &fit.DailyActivity{Steps: 4000, Calories: 200}}
	now := at(10, 0)

	job := NewExternalFitSyncJob(s.users, s.activities, provider, testLogger(), fixedClock(now))
	require.NoError(t, job.Run(ctx))
	provider.daily = &fit.DailyActivity{Steps: 6500, Calories: 320}
	require.NoError(t, job.Run(ctx))

	assert.Equal(t, 1, provider.refreshed)
	assert.Equal(t, []string{"fresh", "fresh"}, provider.fetchedFor)

	u, err := s.users.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "fresh", u.Fit.AccessToken)
	assert.Equal(t, "refresh-1", u.Fit.RefreshToken)

	acts, err := s.activities.GetByUserAndPeriod(ctx, 1, calendar.StartOfDay(now), calendar.StartOfDay(now).AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, activity.SourceGoogleFit, acts[0].Source)
	assert.Equal(t, 6500, acts[0].Steps)
	assert.Equal(t, 320, acts[0].CaloriesBurned)
}

func TestFitSyncRejectsNegativePayload(t *testing.T) {
	s := newStores(fitUser(at(23, 0), ""))
	provider := &fakeFitProvider{daily: &fit.DailyActivity{Steps: -1}}
	job := NewExternalFitSyncJob(s.users, s.activities, provider, testLogger(), fixedClock(at(10, 0)))

	err := job.syncUser(context.Background(), fitUser(at(23, 0), ""), at(10, 0))
	assert.ErrorIs(t, err, ErrMalformedPayload)

	existing, err := s.activities.GetByUserDateAndSource(context.Background(), 1, "2024-03-10", activity.SourceGoogleFit)
	require.NoError(t, err)
	assert.Nil(t, existing)
}

func TestFitSyncExpiredWithoutRefreshToken(t *testing.T) {
	s := newStores()
	provider := &fakeFitProvider{daily: &fit.DailyActivity{}}
	job := NewExternalFitSyncJob(s.users, s.activities, provider, testLogger(), fixedClock(at(10, 0)))

	err := job.syncUser(context.Background(), fitUser(at(9, 0), ""), at(10, 0))
	assert.ErrorIs(t, err, ErrNoRefreshToken)
	assert.Zero(t, provider.refreshed)
	assert.Empty(t, provider.fetchedFor)
}

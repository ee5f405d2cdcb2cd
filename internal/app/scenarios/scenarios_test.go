package scenarios_test

import (
	"context"
	"errors"
	"fitness_assistant_bot/internal/app"
	"fitness_assistant_bot/internal/app/scenarios"
	"fitness_assistant_bot/internal/domain/calendar"
	"fitness_assistant_bot/internal/domain/fit"
	"fitness_assistant_bot/internal/domain/meal"
	"fitness_assistant_bot/internal/domain/scenario"
	"fitness_assistant_bot/internal/domain/user"
	"fitness_assistant_bot/internal/infra/memory"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

const (
	userID int64 = 42
	chatID int64 = 4200
)

var now = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

type recordingClient struct {
	mu       sync.Mutex
	messages []string
}

func (c *recordingClient) SendMessage(_ int64, text string, _ *telebot.SendOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, text)
	return nil
}

func (c *recordingClient) last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return ""
	}
	return c.messages[len(c.messages)-1]
}

type fakeProvider struct {
	exchangeErr error
}

func (p *fakeProvider) AuthURL(state string) string { return "https://auth.example/?state=" + state }

func (p *fakeProvider) ExchangeCode(_ context.Context, code string) (*fit.Token, error) {
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return &fit.Token{AccessToken: "access-" + code, RefreshToken: "refresh", Expiry: now.Add(time.Hour)}, nil
}

func (p *fakeProvider) RefreshToken(context.Context, string) (*fit.Token, error) {
	return nil, errors.New("not used")
}

func (p *fakeProvider) GetDailyActivity(context.Context, string, time.Time) (*fit.DailyActivity, error) {
	return nil, errors.New("not used")
}

type fixture struct {
	engine   *app.ScenarioEngine
	store    *memory.ScenarioStore
	users    *memory.UserRepository
	meals    *memory.MealRepository
	goals    *memory.GoalRepository
	client   *recordingClient
	provider *fakeProvider
}

func newFixture(t *testing.T, users ...*user.User) *fixture {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	logger := logrus.NewEntry(l)

	f := &fixture{
		store:    memory.NewScenarioStore(),
		users:    memory.NewUserRepository(users...),
		meals:    memory.NewMealRepository(),
		goals:    memory.NewGoalRepository(),
		client:   &recordingClient{},
		provider: &fakeProvider{},
	}
	handlers := scenarios.All(scenarios.Deps{
		Users:          f.users,
		Meals:          f.meals,
		Goals:          f.goals,
		Fit:            f.provider,
		TelegramClient: f.client,
		Logger:         logger,
		Clock:          func() time.Time { return now },
	})
	engine, err := app.NewScenarioEngine(f.store, logger, handlers...)
	require.NoError(t, err)
	f.engine = engine
	return f
}

func (f *fixture) begin(t *testing.T, kind scenario.Kind) {
	t.Helper()
	_, err := f.engine.Begin(context.Background(), kind, scenario.Input{UserID: userID, ChatID: chatID})
	require.NoError(t, err)
}

func (f *fixture) send(t *testing.T, text string) scenario.Result {
	t.Helper()
	handled, res, err := f.engine.Dispatch(context.Background(), scenario.Input{UserID: userID, ChatID: chatID, Text: text})
	require.NoError(t, err)
	require.True(t, handled, "expected an active scenario for %q", text)
	return res
}

func (f *fixture) current(t *testing.T) *scenario.Context {
	t.Helper()
	sc, err := f.store.Get(context.Background(), userID)
	require.NoError(t, err)
	return sc
}

func registered() *user.User {
	return &user.User{ID: userID, ChatID: chatID, Name: "Ann", Age: 30, HeightCm: 170, WeightKg: 65, Reminders: user.AllOn()}
}

func TestRegistrationChainsIntoMealTimeSetup(t *testing.T) {
	f := newFixture(t)
	f.begin(t, scenario.KindRegistration)

	f.send(t, "Ann")
	f.send(t, "abc")
	assert.Equal(t, 2, f.current(t).Step)
	f.send(t, "30")
	f.send(t, "170,5")
	res := f.send(t, "65")

	assert.Equal(t, scenario.StatusCompleted, res.Status)
	assert.Equal(t, scenario.KindMealTimeSetup, res.Next)

	u, err := f.users.GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, 30, u.Age)
	assert.InDelta(t, 170.5, u.HeightCm, 0.001)
	assert.Equal(t, chatID, u.ChatID)
	assert.Equal(t, user.AllOn(), u.Reminders)

	sc := f.current(t)
	require.NotNil(t, sc)
	assert.Equal(t, scenario.KindMealTimeSetup, sc.Scenario)
	assert.Equal(t, 1, sc.Step)
}

func TestMealTimeSetupStoresTimesAndSkips(t *testing.T) {
	f := newFixture(t, registered())
	f.begin(t, scenario.KindMealTimeSetup)

	f.send(t, "8:00")
	f.send(t, "25:00")
	assert.Equal(t, 2, f.current(t).Step)
	f.send(t, "-")
	res := f.send(t, "19:30")
	assert.Equal(t, scenario.StatusCompleted, res.Status)
	assert.Nil(t, f.current(t))

	u, err := f.users.GetByID(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, u.MealTimes.Breakfast)
	assert.Equal(t, "08:00", u.MealTimes.Breakfast.String())
	assert.Nil(t, u.MealTimes.Lunch)
	require.NotNil(t, u.MealTimes.Dinner)
	assert.Equal(t, "19:30", u.MealTimes.Dinner.String())
}

func TestMealTimeSetupFailsForUnknownUser(t *testing.T) {
	f := newFixture(t)
	f.begin(t, scenario.KindMealTimeSetup)
	f.send(t, "-")
	f.send(t, "-")
	res := f.send(t, "-")
	assert.Equal(t, scenario.StatusFailed, res.Status)
	assert.Nil(t, f.current(t))
}

func TestAddMealRejectsInvalidCaloriesWithoutAdvancing(t *testing.T) {
	f := newFixture(t, registered())
	f.begin(t, scenario.KindAddMeal)
	f.send(t, "Oatmeal")

	res := f.send(t, "lots")
	assert.Equal(t, scenario.StatusInProgress, res.Status)
	sc := f.current(t)
	assert.Equal(t, 2, sc.Step)
	_, ok := sc.Data.Number("calories")
	assert.False(t, ok)

	res = f.send(t, "350")
	assert.Equal(t, scenario.StatusInProgress, res.Status)
	sc = f.current(t)
	assert.Equal(t, 3, sc.Step)
	calories, ok := sc.Data.Number("calories")
	require.True(t, ok)
	assert.Equal(t, 350.0, calories)
	name, _ := sc.Data.String("name")
	assert.Equal(t, "Oatmeal", name)

	res = f.send(t, "Breakfast")
	assert.Equal(t, scenario.StatusCompleted, res.Status)
	assert.Nil(t, f.current(t))

	meals, err := f.meals.GetByUserAndPeriod(context.Background(), userID, calendar.StartOfDay(now), now)
	require.NoError(t, err)
	require.Len(t, meals, 1)
	assert.Equal(t, meal.KindBreakfast, meals[0].Kind)
	assert.Equal(t, 350, meals[0].Calories)
	assert.Equal(t, now, meals[0].EatenAt)
}

func TestSetDailyGoalUpsertsTodaysGoal(t *testing.T) {
	f := newFixture(t, registered())
	for _, steps := range []string{"8000", "12000"} {
		f.begin(t, scenario.KindSetDailyGoal)
		f.send(t, steps)
		f.send(t, "2000")
		res := f.send(t, "500")
		assert.Equal(t, scenario.StatusCompleted, res.Status)
	}

	g, err := f.goals.GetByUserAndDate(context.Background(), userID, calendar.DayKey(now))
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, int64(1), g.ID)
	assert.Equal(t, 12000, g.TargetSteps)
	assert.Equal(t, 2000, g.TargetCaloriesIn)
	assert.Equal(t, 500, g.TargetCaloriesOut)
	assert.False(t, g.IsCompleted)
}

func TestBmiReportsCategory(t *testing.T) {
	f := newFixture(t, registered())
	f.begin(t, scenario.KindBmi)
	f.send(t, "180")
	res := f.send(t, "90")
	assert.Equal(t, scenario.StatusCompleted, res.Status)
	assert.Contains(t, f.client.last(), "27.8")
	assert.Contains(t, f.client.last(), "overweight")

	u, err := f.users.GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.InDelta(t, 90.0, u.WeightKg, 0.001)
}

func TestBMICategoryBoundaries(t *testing.T) {
	cases := []struct {
		bmi  float64
		want string
	}{
		{18.4, "underweight"},
		{18.5, "normal weight"},
		{24.9, "normal weight"},
		{25, "overweight"},
		{30, "obesity"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, scenarios.BMICategory(tc.bmi), "bmi %.1f", tc.bmi)
	}
}

func TestEditProfileChangesOneField(t *testing.T) {
	f := newFixture(t, registered())
	f.begin(t, scenario.KindEditProfile)
	f.send(t, "shoe size")
	assert.Equal(t, 1, f.current(t).Step)
	f.send(t, "Weight")
	res := f.send(t, "70.5")
	assert.Equal(t, scenario.StatusCompleted, res.Status)

	u, err := f.users.GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.InDelta(t, 70.5, u.WeightKg, 0.001)
	assert.Equal(t, "Ann", u.Name)
}

func TestActivityReminderSettingsToggles(t *testing.T) {
	f := newFixture(t, registered())
	f.begin(t, scenario.KindActivityReminderSettings)
	res := f.send(t, "lunch")
	assert.Equal(t, scenario.StatusCompleted, res.Status)

	f.begin(t, scenario.KindActivityReminderSettings)
	f.send(t, "off")

	u, err := f.users.GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.False(t, u.Reminders.Lunch)
	assert.False(t, u.Reminders.Enabled)
	assert.True(t, u.Reminders.Morning)
}

func TestConnectExternalFitSavesCredential(t *testing.T) {
	f := newFixture(t, registered())
	f.begin(t, scenario.KindConnectExternalFit)
	assert.Contains(t, f.client.last(), "state=42")

	res := f.send(t, " code-1 ")
	assert.Equal(t, scenario.StatusCompleted, res.Status)

	u, err := f.users.GetByID(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, u.Fit)
	assert.Equal(t, "access-code-1", u.Fit.AccessToken)
	assert.Equal(t, "refresh", u.Fit.RefreshToken)
}

func TestConnectExternalFitFailsOnExchangeError(t *testing.T) {
	f := newFixture(t, registered())
	f.provider.exchangeErr = errors.New("invalid_grant")
	f.begin(t, scenario.KindConnectExternalFit)

	res := f.send(t, "bad")
	assert.Equal(t, scenario.StatusFailed, res.Status)
	assert.Nil(t, f.current(t))

	u, err := f.users.GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Nil(t, u.Fit)
}

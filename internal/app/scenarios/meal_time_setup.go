package scenarios

import (
	"context"
	"errors"
	"fitness_assistant_bot/internal/domain/scenario"
	"fitness_assistant_bot/internal/domain/user"
	"strings"
)

const skipAnswer = "-"

// MealTimeSetup asks for breakfast, lunch and dinner times used by meal reminders.
type MealTimeSetup struct{ base }

func (s *MealTimeSetup) Kind() scenario.Kind { return scenario.KindMealTimeSetup }

func (s *MealTimeSetup) Step(ctx context.Context, in scenario.Input, sc *scenario.Context) scenario.Result {
	switch sc.Step {
	case 0:
		return s.ask(in, sc, "When do you usually have breakfast? Reply HH:MM in UTC, or - to skip.")
	case 1:
		if !s.record(in, sc, "breakfast") {
			return s.retry(in, "Please reply with a time like 08:30, or - to skip.")
		}
		return s.ask(in, sc, "When do you usually have lunch? HH:MM or -")
	case 2:
		if !s.record(in, sc, "lunch") {
			return s.retry(in, "Please reply with a time like 13:00, or - to skip.")
		}
		return s.ask(in, sc, "And dinner? HH:MM or -")
	case 3:
		if !s.record(in, sc, "dinner") {
			return s.retry(in, "Please reply with a time like 19:00, or - to skip.")
		}
		return s.save(ctx, in, sc)
	default:
		return scenario.Completed()
	}
}

// record stores a normalized "HH:MM" or "" (skipped) under key.
func (s *MealTimeSetup) record(in scenario.Input, sc *scenario.Context, key string) bool {
	text := strings.TrimSpace(in.Text)
	if text == skipAnswer {
		sc.Data.Set(key, scenario.String(""))
		return true
	}
	t, err := user.ParseTimeOfDay(text)
	if err != nil {
		return false
	}
	sc.Data.Set(key, scenario.String(t.String()))
	return true
}

func (s *MealTimeSetup) save(ctx context.Context, in scenario.Input, sc *scenario.Context) scenario.Result {
	u, err := s.Users.GetByID(ctx, in.UserID)
	if errors.Is(err, user.ErrUserNotFound) {
		return s.fail(in, err, "Please register first with /start.")
	}
	if err != nil {
		return s.fail(in, err, genericFailure)
	}

	u.MealTimes = user.MealTimes{
		Breakfast: storedTime(sc, "breakfast"),
		Lunch:     storedTime(sc, "lunch"),
		Dinner:    storedTime(sc, "dinner"),
	}
	if err := s.Users.Save(ctx, u); err != nil {
		return s.fail(in, err, genericFailure)
	}
	s.reply(in, "Meal times saved. I will remind you if you forget to log a meal.")
	return scenario.Completed()
}

func storedTime(sc *scenario.Context, key string) *user.TimeOfDay {
	v, ok := sc.Data.String(key)
	if !ok || v == "" {
		return nil
	}
	t, err := user.ParseTimeOfDay(v)
	if err != nil {
		return nil
	}
	return &t
}

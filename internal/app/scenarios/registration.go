package scenarios

import (
	"context"
	"errors"
	"fitness_assistant_bot/internal/domain/scenario"
	"fitness_assistant_bot/internal/domain/user"
	"fmt"
	"strings"
)

const maxNameLength = 64

// Registration collects name, age, height and weight, then chains into meal time setup.
type Registration struct{ base }

func (s *Registration) Kind() scenario.Kind { return scenario.KindRegistration }

func (s *Registration) Step(ctx context.Context, in scenario.Input, sc *scenario.Context) scenario.Result {
	switch sc.Step {
	case 0:
		return s.ask(in, sc, "Welcome! I will help you keep track of your activity and meals. What is your name?")
	case 1:
		name := strings.TrimSpace(in.Text)
		if name == "" || len(name) > maxNameLength {
			return s.retry(in, "Please enter your name (up to 64 characters).")
		}
		sc.Data.Set("name", scenario.String(name))
		return s.ask(in, sc, fmt.Sprintf("Nice to meet you, %s! How old are you?", name))
	case 2:
		age, ok := parseInt(in.Text, 10, 120)
		if !ok {
			return s.retry(in, "Please enter your age as a whole number between 10 and 120.")
		}
		sc.Data.Set("age", scenario.Number(float64(age)))
		return s.ask(in, sc, "What is your height in cm?")
	case 3:
		height, ok := parseFloat(in.Text, 50, 250)
		if !ok {
			return s.retry(in, "Please enter your height in cm, between 50 and 250.")
		}
		sc.Data.Set("height", scenario.Number(height))
		return s.ask(in, sc, "What is your weight in kg?")
	case 4:
		weight, ok := parseFloat(in.Text, 20, 400)
		if !ok {
			return s.retry(in, "Please enter your weight in kg, between 20 and 400.")
		}
		return s.complete(ctx, in, sc, weight)
	default:
		return scenario.Completed()
	}
}

func (s *Registration) complete(ctx context.Context, in scenario.Input, sc *scenario.Context, weight float64) scenario.Result {
	name, _ := sc.Data.String("name")
	age, _ := sc.Data.Number("age")
	height, _ := sc.Data.Number("height")

	u, err := s.Users.GetByID(ctx, in.UserID)
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		u = &user.User{ID: in.UserID, Reminders: user.AllOn()}
	case err != nil:
		return s.fail(in, err, genericFailure)
	}
	u.ChatID = in.ChatID
	u.Name = name
	u.Age = int(age)
	u.HeightCm = height
	u.WeightKg = weight

	if err := s.Users.Save(ctx, u); err != nil {
		return s.fail(in, err, genericFailure)
	}
	s.reply(in, "Registration complete! Now let's set up your meal times.")
	return scenario.CompletedThen(scenario.KindMealTimeSetup)
}

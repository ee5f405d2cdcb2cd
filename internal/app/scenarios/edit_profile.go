package scenarios

import (
	"context"
	"errors"
	"fitness_assistant_bot/internal/domain/scenario"
	"fitness_assistant_bot/internal/domain/user"
	"fmt"
	"strings"
)

// EditProfile changes a single profile field.
type EditProfile struct{ base }

func (s *EditProfile) Kind() scenario.Kind { return scenario.KindEditProfile }

func (s *EditProfile) Step(ctx context.Context, in scenario.Input, sc *scenario.Context) scenario.Result {
	switch sc.Step {
	case 0:
		u, err := s.Users.GetByID(ctx, in.UserID)
		if errors.Is(err, user.ErrUserNotFound) {
			return s.fail(in, err, "Please register first with /start.")
		}
		if err != nil {
			return s.fail(in, err, genericFailure)
		}
		return s.ask(in, sc, fmt.Sprintf(
			"Your profile:\nName: %s\nAge: %d\nHeight: %.1f cm\nWeight: %.1f kg\n\nWhat do you want to change: name, age, height or weight?",
			u.Name, u.Age, u.HeightCm, u.WeightKg))
	case 1:
		field := strings.ToLower(strings.TrimSpace(in.Text))
		prompt, ok := profilePrompts[field]
		if !ok {
			return s.retry(in, "Please answer name, age, height or weight.")
		}
		sc.Data.Set("field", scenario.String(field))
		return s.ask(in, sc, prompt)
	case 2:
		return s.apply(ctx, in, sc)
	default:
		return scenario.Completed()
	}
}

var profilePrompts = map[string]string{
	"name":   "What is your new name?",
	"age":    "How old are you?",
	"height": "What is your height in cm?",
	"weight": "What is your weight in kg?",
}

func (s *EditProfile) apply(ctx context.Context, in scenario.Input, sc *scenario.Context) scenario.Result {
	field, _ := sc.Data.String("field")

	u, err := s.Users.GetByID(ctx, in.UserID)
	if err != nil {
		return s.fail(in, err, genericFailure)
	}

	switch field {
	case "name":
		name := strings.TrimSpace(in.Text)
		if name == "" || len(name) > maxNameLength {
			return s.retry(in, "Please enter your name (up to 64 characters).")
		}
		u.Name = name
	case "age":
		age, ok := parseInt(in.Text, 10, 120)
		if !ok {
			return s.retry(in, "Please enter your age as a whole number between 10 and 120.")
		}
		u.Age = age
	case "height":
		height, ok := parseFloat(in.Text, 50, 250)
		if !ok {
			return s.retry(in, "Please enter your height in cm, between 50 and 250.")
		}
		u.HeightCm = height
	case "weight":
		weight, ok := parseFloat(in.Text, 20, 400)
		if !ok {
			return s.retry(in, "Please enter your weight in kg, between 20 and 400.")
		}
		u.WeightKg = weight
	default:
		return s.fail(in, fmt.Errorf("unknown profile field %q", field), genericFailure)
	}

	if err := s.Users.Save(ctx, u); err != nil {
		return s.fail(in, err, genericFailure)
	}
	s.reply(in, "Profile updated.")
	return scenario.Completed()
}

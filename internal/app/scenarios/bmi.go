package scenarios

import (
	"context"
	"errors"
	"fitness_assistant_bot/internal/domain/scenario"
	"fitness_assistant_bot/internal/domain/user"
	"fmt"
)

// Bmi asks for height and weight and replies with the body mass index.
type Bmi struct{ base }

func (s *Bmi) Kind() scenario.Kind { return scenario.KindBmi }

func (s *Bmi) Step(ctx context.Context, in scenario.Input, sc *scenario.Context) scenario.Result {
	switch sc.Step {
	case 0:
		return s.ask(in, sc, "Let's calculate your BMI. What is your height in cm?")
	case 1:
		height, ok := parseFloat(in.Text, 50, 250)
		if !ok {
			return s.retry(in, "Please enter your height in cm, between 50 and 250.")
		}
		sc.Data.Set("height", scenario.Number(height))
		return s.ask(in, sc, "What is your weight in kg?")
	case 2:
		weight, ok := parseFloat(in.Text, 20, 400)
		if !ok {
			return s.retry(in, "Please enter your weight in kg, between 20 and 400.")
		}
		height, _ := sc.Data.Number("height")
		bmi := BMI(height, weight)
		s.reply(in, fmt.Sprintf("Your BMI is %.1f (%s).", bmi, BMICategory(bmi)))
		s.remember(ctx, in, height, weight)
		return scenario.Completed()
	default:
		return scenario.Completed()
	}
}

// remember stores the measurements on a registered user.
func (s *Bmi) remember(ctx context.Context, in scenario.Input, height, weight float64) {
	u, err := s.Users.GetByID(ctx, in.UserID)
	if errors.Is(err, user.ErrUserNotFound) {
		return
	}
	if err == nil {
		u.HeightCm, u.WeightKg = height, weight
		err = s.Users.Save(ctx, u)
	}
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", in.UserID).Warn("Failed to store BMI measurements")
	}
}

// BMI is weight in kg over the square of height in metres.
func BMI(heightCm, weightKg float64) float64 {
	m := heightCm / 100
	return weightKg / (m * m)
}

// BMICategory names the WHO range of bmi.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "underweight"
	case bmi < 25:
		return "normal weight"
	case bmi < 30:
		return "overweight"
	default:
		return "obesity"
	}
}

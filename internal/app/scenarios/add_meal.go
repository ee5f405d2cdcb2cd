package scenarios

import (
	"context"
	"fitness_assistant_bot/internal/domain/meal"
	"fitness_assistant_bot/internal/domain/scenario"
	"fmt"
	"strings"
)

// AddMeal logs a meal: name, calories, then which meal of the day it was.
type AddMeal struct{ base }

func (s *AddMeal) Kind() scenario.Kind { return scenario.KindAddMeal }

func (s *AddMeal) Step(ctx context.Context, in scenario.Input, sc *scenario.Context) scenario.Result {
	switch sc.Step {
	case 0:
		return s.ask(in, sc, "What did you eat?")
	case 1:
		name := strings.TrimSpace(in.Text)
		if name == "" {
			return s.retry(in, "Please describe the meal, e.g. \"oatmeal with banana\".")
		}
		sc.Data.Set("name", scenario.String(name))
		return s.ask(in, sc, "How many calories did it have?")
	case 2:
		calories, ok := parseInt(in.Text, 1, 10000)
		if !ok {
			return s.retry(in, "Please enter the calories as a whole number, e.g. 450.")
		}
		sc.Data.Set("calories", scenario.Number(float64(calories)))
		return s.ask(in, sc, "Which meal was it: breakfast, lunch, dinner or snack?")
	case 3:
		kind, ok := meal.ParseKind(in.Text)
		if !ok {
			return s.retry(in, "Please answer breakfast, lunch, dinner or snack.")
		}
		name, _ := sc.Data.String("name")
		calories, _ := sc.Data.Number("calories")
		m := &meal.Meal{
			UserID:   in.UserID,
			Name:     name,
			Kind:     kind,
			Calories: int(calories),
			EatenAt:  s.Clock(),
		}
		if err := s.Meals.Add(ctx, m); err != nil {
			return s.fail(in, err, "Could not save your meal, please try again with /meal.")
		}
		s.reply(in, fmt.Sprintf("Logged %s: %s, %d kcal.", strings.ToLower(string(kind)), name, m.Calories))
		return scenario.Completed()
	default:
		return scenario.Completed()
	}
}

package scenarios

import (
	"context"
	"database/sql"
	"fitness_assistant_bot/internal/domain/calendar"
	"fitness_assistant_bot/internal/domain/goal"
	"fitness_assistant_bot/internal/domain/scenario"
	"fmt"
)

// SetDailyGoal sets today's step and calorie targets.
type SetDailyGoal struct{ base }

func (s *SetDailyGoal) Kind() scenario.Kind { return scenario.KindSetDailyGoal }

func (s *SetDailyGoal) Step(ctx context.Context, in scenario.Input, sc *scenario.Context) scenario.Result {
	switch sc.Step {
	case 0:
		return s.ask(in, sc, "How many steps do you want to take today?")
	case 1:
		steps, ok := parseInt(in.Text, 100, 100000)
		if !ok {
			return s.retry(in, "Please enter a number of steps between 100 and 100000.")
		}
		sc.Data.Set("steps", scenario.Number(float64(steps)))
		return s.ask(in, sc, "How many calories at most do you want to eat?")
	case 2:
		calIn, ok := parseInt(in.Text, 500, 10000)
		if !ok {
			return s.retry(in, "Please enter a calorie limit between 500 and 10000.")
		}
		sc.Data.Set("calories_in", scenario.Number(float64(calIn)))
		return s.ask(in, sc, "How many calories do you want to burn?")
	case 3:
		calOut, ok := parseInt(in.Text, 0, 10000)
		if !ok {
			return s.retry(in, "Please enter calories to burn between 0 and 10000.")
		}
		return s.save(ctx, in, sc, calOut)
	default:
		return scenario.Completed()
	}
}

func (s *SetDailyGoal) save(ctx context.Context, in scenario.Input, sc *scenario.Context, calOut int) scenario.Result {
	steps, _ := sc.Data.Number("steps")
	calIn, _ := sc.Data.Number("calories_in")
	day := calendar.DayKey(s.Clock())

	g, err := s.Goals.GetByUserAndDate(ctx, in.UserID, day)
	if err != nil {
		return s.fail(in, err, genericFailure)
	}
	if g == nil {
		g = &goal.DailyGoal{UserID: in.UserID, Day: day}
	}
	g.TargetSteps = int(steps)
	g.TargetCaloriesIn = int(calIn)
	g.TargetCaloriesOut = calOut
	g.IsCompleted = false
	g.CompletedAt = sql.NullTime{}

	if err := s.Goals.Save(ctx, g); err != nil {
		return s.fail(in, err, "Could not save your goal, please try again with /goal.")
	}
	s.reply(in, fmt.Sprintf("Goal for today saved: %d steps, at most %d kcal eaten, %d kcal burned.",
		g.TargetSteps, g.TargetCaloriesIn, g.TargetCaloriesOut))
	return scenario.Completed()
}

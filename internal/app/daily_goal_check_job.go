// internal/app/daily_goal_check_job.go
package app

import (
	"context"
	"database/sql"
	"fitness_assistant_bot/internal/domain/activity"
	"fitness_assistant_bot/internal/domain/goal"
	"fitness_assistant_bot/internal/domain/meal"
	"fitness_assistant_bot/internal/domain/notification"
	"fitness_assistant_bot/internal/domain/user"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	dailyGoalCheckInterval = 10 * time.Minute
	goalProgressHour       = 20
)

// DailyGoalCheckJob marks goals completed and sends the evening progress summary.
type DailyGoalCheckJob struct {
	users      user.Repository
	activities activity.Repository
	meals      meal.Repository
	goals      goal.Repository
	ledger     *NotificationLedger
	logger     *logrus.Entry
	now        Clock
}

func NewDailyGoalCheckJob(
	users user.Repository,
	activities activity.Repository,
	meals meal.Repository,
	goals goal.Repository,
	ledger *NotificationLedger,
	logger *logrus.Entry,
	clock Clock,
) *DailyGoalCheckJob {
	return &DailyGoalCheckJob{
		users:      users,
		activities: activities,
		meals:      meals,
		goals:      goals,
		ledger:     ledger,
		logger:     logger.WithField("job", "daily_goal_check"),
		now:        orSystemClock(clock),
	}
}

func (j *DailyGoalCheckJob) Name() string            { return "daily_goal_check" }
func (j *DailyGoalCheckJob) Interval() time.Duration { return dailyGoalCheckInterval }

func (j *DailyGoalCheckJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	users, err := j.users.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	for _, u := range users {
		if err := j.checkUser(ctx, u, now); err != nil {
			j.logger.WithError(err).WithField("user_id", u.ID).Error("Failed to check daily goal for user")
		}
	}
	return nil
}

func (j *DailyGoalCheckJob) checkUser(ctx context.Context, u *user.User, now time.Time) error {
	p, err := loadDayProgress(ctx, j.activities, j.meals, j.goals, u.ID, now)
	if err != nil {
		return err
	}
	g := p.goal
	if g == nil || g.IsCompleted {
		return nil
	}

	progress := goal.Progress{
		Steps:       p.totals.Steps,
		CaloriesIn:  p.caloriesIn,
		CaloriesOut: p.totals.CaloriesBurned,
	}
	logCtx := j.logger.WithFields(logrus.Fields{"user_id": u.ID, "goal_id": g.ID})

	if g.Met(progress) {
		g.IsCompleted = true
		g.CompletedAt = sql.NullTime{Time: now, Valid: true}
		if err := j.goals.Save(ctx, g); err != nil {
			return fmt.Errorf("failed to save completed goal %d: %w", g.ID, err)
		}
		text := fmt.Sprintf("Congratulations, %s! You reached today's goal: %d steps, %d kcal eaten, %d kcal burned.",
			u.Name, progress.Steps, progress.CaloriesIn, progress.CaloriesOut)
		if _, err := j.ledger.Schedule(ctx, u.ID, notification.TypeDailyGoalAchieved, text, now); err != nil {
			return err
		}
		logCtx.Info("Daily goal completed")
		return nil
	}

	if now.Hour() != goalProgressHour {
		return nil
	}
	done, err := j.ledger.AlreadyScheduled(ctx, u.ID, notification.TypeDailyGoalProgress, now, now)
	if err != nil {
		return err
	}
	if done {
		return nil
	}
	if _, err := j.ledger.Schedule(ctx, u.ID, notification.TypeDailyGoalProgress, composeGoalProgress(g, progress), now); err != nil {
		return err
	}
	logCtx.Info("Daily goal progress reminder scheduled")
	return nil
}

func composeGoalProgress(g *goal.DailyGoal, p goal.Progress) string {
	mark := func(ok bool) string {
		if ok {
			return "✅"
		}
		return "❌"
	}
	var b strings.Builder
	b.WriteString("Your daily goal is not reached yet:\n")
	fmt.Fprintf(&b, "%s Steps: %d / %d\n", mark(g.StepsMet(p)), p.Steps, g.TargetSteps)
	fmt.Fprintf(&b, "%s Calories eaten: %d / %d max\n", mark(g.CaloriesInMet(p)), p.CaloriesIn, g.TargetCaloriesIn)
	fmt.Fprintf(&b, "%s Calories burned: %d / %d\n", mark(g.CaloriesOutMet(p)), p.CaloriesOut, g.TargetCaloriesOut)
	b.WriteString("There are still a few hours left!")
	return b.String()
}

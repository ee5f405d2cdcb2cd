// internal/app/activity_reminder_job.go
package app

import (
	"context"
	"fitness_assistant_bot/internal/domain/activity"
	"fitness_assistant_bot/internal/domain/calendar"
	"fitness_assistant_bot/internal/domain/goal"
	"fitness_assistant_bot/internal/domain/meal"
	"fitness_assistant_bot/internal/domain/notification"
	"fitness_assistant_bot/internal/domain/user"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	activityReminderInterval  = 5 * time.Minute
	activityReminderTolerance = 5 * time.Minute
	activityRemindersFromHour = 8
	activityRemindersToHour   = 22
	eveningSmallGapSteps      = 2000
	lunchOnTrackShare         = 0.4
)

// dayProgress is everything a reminder message may mention.
type dayProgress struct {
	goal       *goal.DailyGoal
	totals     activity.Totals
	caloriesIn int
}

type activitySlot struct {
	at      user.TimeOfDay
	typ     notification.Type
	enabled func(user.ReminderPreferences) bool
	compose func(u *user.User, p dayProgress) (string, bool)
}

var activitySlots = []activitySlot{
	{
		at:      9 * 60,
		typ:     notification.TypeMorningActivity,
		enabled: func(p user.ReminderPreferences) bool { return p.Morning },
		compose: composeMorning,
	},
	{
		at:      13 * 60,
		typ:     notification.TypeLunchTimeActivity,
		enabled: func(p user.ReminderPreferences) bool { return p.Lunch },
		compose: composeLunch,
	},
	{
		at:      16 * 60,
		typ:     notification.TypeAfternoonActivity,
		enabled: func(p user.ReminderPreferences) bool { return p.Afternoon },
		compose: composeAfternoon,
	},
	{
		at:      19 * 60,
		typ:     notification.TypeEveningActivity,
		enabled: func(p user.ReminderPreferences) bool { return p.Evening },
		compose: composeEvening,
	},
}

// ActivityReminderJob schedules the four daily activity nudges.
type ActivityReminderJob struct {
	users      user.Repository
	activities activity.Repository
	meals      meal.Repository
	goals      goal.Repository
	ledger     *NotificationLedger
	logger     *logrus.Entry
	now        Clock
}

func NewActivityReminderJob(
	users user.Repository,
	activities activity.Repository,
	meals meal.Repository,
	goals goal.Repository,
	ledger *NotificationLedger,
	logger *logrus.Entry,
	clock Clock,
) *ActivityReminderJob {
	return &ActivityReminderJob{
		users:      users,
		activities: activities,
		meals:      meals,
		goals:      goals,
		ledger:     ledger,
		logger:     logger.WithField("job", "activity_reminder"),
		now:        orSystemClock(clock),
	}
}

func (j *ActivityReminderJob) Name() string            { return "activity_reminder" }
func (j *ActivityReminderJob) Interval() time.Duration { return activityReminderInterval }

func (j *ActivityReminderJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	if now.Hour() < activityRemindersFromHour || now.Hour() >= activityRemindersToHour {
		j.logger.Debugf("Outside reminder hours (%02d:00-%02d:00 UTC), skipping", activityRemindersFromHour, activityRemindersToHour)
		return nil
	}

	users, err := j.users.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	for _, u := range users {
		if err := j.remindUser(ctx, u, now); err != nil {
			j.logger.WithError(err).WithField("user_id", u.ID).Error("Failed to process activity reminders for user")
		}
	}
	return nil
}

func (j *ActivityReminderJob) remindUser(ctx context.Context, u *user.User, now time.Time) error {
	if !u.Reminders.Enabled {
		return nil
	}

	var progress *dayProgress
	for _, slot := range activitySlots {
		if !slot.enabled(u.Reminders) || !inWindow(now, slot.at.On(now), activityReminderTolerance) {
			continue
		}

		done, err := j.ledger.AlreadyScheduled(ctx, u.ID, slot.typ, now, now)
		if err != nil {
			return err
		}
		if done {
			continue
		}

		if progress == nil {
			p, err := loadDayProgress(ctx, j.activities, j.meals, j.goals, u.ID, now)
			if err != nil {
				return err
			}
			progress = p
		}

		text, ok := slot.compose(u, *progress)
		if !ok {
			j.logger.WithFields(logrus.Fields{"user_id": u.ID, "type": slot.typ}).Debug("Reminder suppressed")
			continue
		}
		if _, err := j.ledger.Schedule(ctx, u.ID, slot.typ, text, now); err != nil {
			return err
		}
		j.logger.WithFields(logrus.Fields{"user_id": u.ID, "type": slot.typ}).Info("Activity reminder scheduled")
	}
	return nil
}

// inWindow reports whether now is in [start, start+width).
func inWindow(now, start time.Time, width time.Duration) bool {
	d := now.Sub(start)
	return d >= 0 && d < width
}

func loadDayProgress(ctx context.Context, activities activity.Repository, meals meal.Repository, goals goal.Repository, userID int64, now time.Time) (*dayProgress, error) {
	start := calendar.StartOfDay(now)

	g, err := goals.GetByUserAndDate(ctx, userID, calendar.DayKey(now))
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	acts, err := activities.GetByUserAndPeriod(ctx, userID, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to get activities: %w", err)
	}
	eaten, err := meals.GetByUserAndPeriod(ctx, userID, start, calendar.EndOfDay(now))
	if err != nil {
		return nil, fmt.Errorf("failed to get meals: %w", err)
	}

	return &dayProgress{
		goal:       g,
		totals:     activity.Sum(acts),
		caloriesIn: meal.TotalCalories(eaten),
	}, nil
}

func composeMorning(u *user.User, p dayProgress) (string, bool) {
	if p.goal == nil {
		return fmt.Sprintf("Good morning, %s! You have no goal for today yet. Set one with /goal.", u.Name), true
	}
	return fmt.Sprintf("Good morning, %s! Today's goal: %d steps, at most %d kcal eaten and %d kcal burned. Let's go!",
		u.Name, p.goal.TargetSteps, p.goal.TargetCaloriesIn, p.goal.TargetCaloriesOut), true
}

func composeLunch(u *user.User, p dayProgress) (string, bool) {
	steps := p.totals.Steps
	if p.goal == nil || p.goal.TargetSteps <= 0 {
		return fmt.Sprintf("Lunch break, %s! You have %d steps so far. A short walk after eating helps digestion.", u.Name, steps), true
	}
	target := p.goal.TargetSteps
	if float64(steps) < lunchOnTrackShare*float64(target) {
		return fmt.Sprintf("%s, you have %d of %d steps (%d%%). A 15-minute walk after lunch will get you back on track.",
			u.Name, steps, target, steps*100/target), true
	}
	return fmt.Sprintf("Nice pace, %s! %d of %d steps already. Keep it up.", u.Name, steps, target), true
}

func composeAfternoon(u *user.User, p dayProgress) (string, bool) {
	return fmt.Sprintf("Time to stretch, %s! Stand up, roll your shoulders and walk around for a few minutes. Active minutes today: %d.",
		u.Name, p.totals.ActiveMinutes), true
}

func composeEvening(u *user.User, p dayProgress) (string, bool) {
	if p.goal == nil || p.goal.IsCompleted {
		return "", false
	}
	stepsLeft := max(0, p.goal.TargetSteps-p.totals.Steps)
	burnLeft := max(0, p.goal.TargetCaloriesOut-p.totals.CaloriesBurned)

	text := fmt.Sprintf("Evening check-in, %s: %d steps and %d kcal to burn left to reach today's goal.", u.Name, stepsLeft, burnLeft)
	if stepsLeft <= eveningSmallGapSteps {
		text += " You're close: a 20-minute walk will close the steps gap!"
	}
	return text, true
}

// internal/app/meal_reminder_job.go
package app

import (
	"context"
	"fitness_assistant_bot/internal/domain/meal"
	"fitness_assistant_bot/internal/domain/notification"
	"fitness_assistant_bot/internal/domain/user"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	mealReminderTimeout = time.Minute
	mealFiringWindow    = 10 * time.Minute
	mealLoggedRadius    = 60 * time.Minute
)

type mealSlot struct {
	label string
	typ   notification.Type
	at    func(user.MealTimes) *user.TimeOfDay
}

var mealSlots = []mealSlot{
	{label: "breakfast", typ: notification.TypeBreakfastReminder, at: func(m user.MealTimes) *user.TimeOfDay { return m.Breakfast }},
	{label: "lunch", typ: notification.TypeLunchReminder, at: func(m user.MealTimes) *user.TimeOfDay { return m.Lunch }},
	{label: "dinner", typ: notification.TypeDinnerReminder, at: func(m user.MealTimes) *user.TimeOfDay { return m.Dinner }},
}

// MealReminderJob reminds users to log a meal shortly after its configured time.
// It evaluates once per trigger and does not loop on its own.
type MealReminderJob struct {
	users  user.Repository
	meals  meal.Repository
	ledger *NotificationLedger
	logger *logrus.Entry
	now    Clock
}

func NewMealReminderJob(users user.Repository, meals meal.Repository, ledger *NotificationLedger, logger *logrus.Entry, clock Clock) *MealReminderJob {
	return &MealReminderJob{
		users:  users,
		meals:  meals,
		ledger: ledger,
		logger: logger.WithField("job", "meal_reminder"),
		now:    orSystemClock(clock),
	}
}

func (j *MealReminderJob) Name() string { return "meal_reminder" }

// Interval bounds a single triggered evaluation.
func (j *MealReminderJob) Interval() time.Duration { return mealReminderTimeout }

func (j *MealReminderJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	users, err := j.users.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	for _, u := range users {
		for _, slot := range mealSlots {
			if err := j.remind(ctx, u, slot, now); err != nil {
				j.logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "meal": slot.label}).Error("Failed to process meal reminder")
			}
		}
	}
	return nil
}

func (j *MealReminderJob) remind(ctx context.Context, u *user.User, slot mealSlot, now time.Time) error {
	tod := slot.at(u.MealTimes)
	if tod == nil {
		return nil
	}
	mealAt := tod.On(now)
	if now.Before(mealAt) || now.After(mealAt.Add(mealFiringWindow)) {
		return nil
	}

	logged, err := j.meals.GetByUserAndPeriod(ctx, u.ID, mealAt.Add(-mealLoggedRadius), mealAt.Add(mealLoggedRadius))
	if err != nil {
		return fmt.Errorf("failed to get meals: %w", err)
	}
	if len(logged) > 0 {
		return nil
	}

	done, err := j.ledger.AlreadyScheduled(ctx, u.ID, slot.typ, now, now)
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	text := fmt.Sprintf("%s, it's %s time (%s). Don't forget to log your %s with /meal.", u.Name, slot.label, tod, slot.label)
	if _, err := j.ledger.Schedule(ctx, u.ID, slot.typ, text, now); err != nil {
		return err
	}
	j.logger.WithFields(logrus.Fields{"user_id": u.ID, "meal": slot.label}).Info("Meal reminder scheduled")
	return nil
}

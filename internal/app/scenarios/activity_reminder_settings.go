package scenarios

import (
	"context"
	"errors"
	"fitness_assistant_bot/internal/domain/scenario"
	"fitness_assistant_bot/internal/domain/user"
	"fmt"
	"strings"
)

// ActivityReminderSettings toggles the activity reminder switch and its slots.
type ActivityReminderSettings struct{ base }

func (s *ActivityReminderSettings) Kind() scenario.Kind {
	return scenario.KindActivityReminderSettings
}

func (s *ActivityReminderSettings) Step(ctx context.Context, in scenario.Input, sc *scenario.Context) scenario.Result {
	switch sc.Step {
	case 0:
		u, err := s.Users.GetByID(ctx, in.UserID)
		if errors.Is(err, user.ErrUserNotFound) {
			return s.fail(in, err, "Please register first with /start.")
		}
		if err != nil {
			return s.fail(in, err, genericFailure)
		}
		return s.ask(in, sc, describeReminders(u.Reminders)+
			"\n\nReply on or off to switch all reminders, or morning, lunch, afternoon or evening to toggle one.")
	case 1:
		return s.apply(ctx, in)
	default:
		return scenario.Completed()
	}
}

func (s *ActivityReminderSettings) apply(ctx context.Context, in scenario.Input) scenario.Result {
	u, err := s.Users.GetByID(ctx, in.UserID)
	if err != nil {
		return s.fail(in, err, genericFailure)
	}

	r := &u.Reminders
	switch strings.ToLower(strings.TrimSpace(in.Text)) {
	case "on":
		r.Enabled = true
	case "off":
		r.Enabled = false
	case "morning":
		r.Morning = !r.Morning
	case "lunch":
		r.Lunch = !r.Lunch
	case "afternoon":
		r.Afternoon = !r.Afternoon
	case "evening":
		r.Evening = !r.Evening
	default:
		return s.retry(in, "Please reply on, off, morning, lunch, afternoon or evening.")
	}

	if err := s.Users.Save(ctx, u); err != nil {
		return s.fail(in, err, genericFailure)
	}
	s.reply(in, "Saved.\n"+describeReminders(u.Reminders))
	return scenario.Completed()
}

func describeReminders(r user.ReminderPreferences) string {
	return fmt.Sprintf("Activity reminders: %s\nMorning: %s\nLunch: %s\nAfternoon: %s\nEvening: %s",
		onOff(r.Enabled), onOff(r.Morning), onOff(r.Lunch), onOff(r.Afternoon), onOff(r.Evening))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

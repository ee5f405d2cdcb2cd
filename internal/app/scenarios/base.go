// Package scenarios holds the multi-step chat interactions driven by the scenario engine.
package scenarios

import (
	"fitness_assistant_bot/internal/domain/fit"
	"fitness_assistant_bot/internal/domain/goal"
	"fitness_assistant_bot/internal/domain/meal"
	"fitness_assistant_bot/internal/domain/scenario"
	domainTelegram "fitness_assistant_bot/internal/domain/telegram"
	"fitness_assistant_bot/internal/domain/user"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Deps are the collaborators shared by scenario handlers.
type Deps struct {
	Users          user.Repository
	Meals          meal.Repository
	Goals          goal.Repository
	Fit            fit.Provider
	TelegramClient domainTelegram.Client
	Logger         *logrus.Entry
	Clock          func() time.Time
}

// All returns one handler per scenario kind.
func All(d Deps) []scenario.Handler {
	b := newBase(d)
	return []scenario.Handler{
		&Registration{b},
		&Bmi{b},
		&AddMeal{b},
		&SetDailyGoal{b},
		&MealTimeSetup{b},
		&EditProfile{b},
		&ActivityReminderSettings{b},
		&ConnectExternalFit{b},
	}
}

type base struct {
	Deps
}

func newBase(d Deps) base {
	if d.Clock == nil {
		d.Clock = func() time.Time { return time.Now().UTC() }
	}
	if d.Logger == nil {
		d.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	d.Logger = d.Logger.WithField("component", "scenario")
	return base{d}
}

// reply sends text to the chat of in. Delivery errors are logged only; the
// conversation state is already decided by the time a reply goes out.
func (b base) reply(in scenario.Input, text string) {
	if err := b.TelegramClient.SendMessage(in.ChatID, text, nil); err != nil {
		b.Logger.WithError(err).WithField("user_id", in.UserID).Error("Failed to send scenario reply")
	}
}

// ask sends a prompt and advances the context to the next step.
func (b base) ask(in scenario.Input, sc *scenario.Context, prompt string) scenario.Result {
	b.reply(in, prompt)
	sc.Advance()
	return scenario.InProgress()
}

// retry re-prompts without advancing.
func (b base) retry(in scenario.Input, prompt string) scenario.Result {
	b.reply(in, prompt)
	return scenario.InProgress()
}

// fail reports a problem to the user and ends the scenario.
func (b base) fail(in scenario.Input, err error, text string) scenario.Result {
	b.Logger.WithError(err).WithField("user_id", in.UserID).Error("Scenario step failed")
	b.reply(in, text)
	return scenario.Failed()
}

func parseInt(s string, lo, hi int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < lo || n > hi {
		return 0, false
	}
	return n, true
}

func parseFloat(s string, lo, hi float64) (float64, bool) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil || f < lo || f > hi {
		return 0, false
	}
	return f, true
}

const genericFailure = "Something went wrong, please try again later."

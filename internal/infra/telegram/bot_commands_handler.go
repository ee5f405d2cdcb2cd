// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"errors"
	"fitness_assistant_bot/internal/domain/scenario"
	"fitness_assistant_bot/internal/domain/user"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const (
	helpText = "Here is what I can do:\n\n" +
		"/start - register or say hello\n" +
		"/meal - log a meal\n" +
		"/goal - set today's goal\n" +
		"/bmi - calculate your BMI\n" +
		"/mealtime - set meal reminder times\n" +
		"/profile - edit your profile\n" +
		"/reminders - activity reminder settings\n" +
		"/connectfit - connect Google Fit\n" +
		"/cancel - stop the current dialog\n" +
		"/help - show this message"
	unknownTextReply = "I didn't get that. Send /help to see what I can do."
	errorReply       = "Something went wrong, please try again later."
)

// Engine is the part of the scenario engine the chat handlers drive.
type Engine interface {
	Dispatch(ctx context.Context, in scenario.Input) (bool, scenario.Result, error)
	Begin(ctx context.Context, kind scenario.Kind, in scenario.Input) (scenario.Result, error)
	Cancel(ctx context.Context, userID int64) (bool, error)
}

// commandScenarios maps commands that simply start a scenario.
var commandScenarios = map[string]scenario.Kind{
	"/bmi":        scenario.KindBmi,
	"/meal":       scenario.KindAddMeal,
	"/goal":       scenario.KindSetDailyGoal,
	"/mealtime":   scenario.KindMealTimeSetup,
	"/profile":    scenario.KindEditProfile,
	"/reminders":  scenario.KindActivityReminderSettings,
	"/connectfit": scenario.KindConnectExternalFit,
}

// Commands answers bot commands and routes free text into scenarios.
type Commands struct {
	engine Engine
	users  user.Repository
	logger *logrus.Entry
}

func NewCommands(engine Engine, users user.Repository, baseLogger *logrus.Entry) *Commands {
	return &Commands{
		engine: engine,
		users:  users,
		logger: baseLogger.WithField("component", "bot_commands"),
	}
}

// handlerFunc returns a direct reply, or "" when the scenario already answered.
type handlerFunc func(ctx context.Context, in scenario.Input) (string, error)

// Register binds every command and the free text fallback on b.
func (h *Commands) Register(ctx context.Context, b *telebot.Bot) {
	b.Handle("/start", h.wrap(ctx, "/start", h.Start))
	b.Handle("/help", h.wrap(ctx, "/help", h.Help))
	b.Handle("/cancel", h.wrap(ctx, "/cancel", h.Cancel))
	for command, kind := range commandScenarios {
		b.Handle(command, h.wrap(ctx, command, h.begin(kind)))
	}
	b.Handle(telebot.OnText, h.wrap(ctx, "text", h.Text))
}

func (h *Commands) wrap(ctx context.Context, name string, fn handlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if c.Sender() == nil || c.Chat() == nil {
			return nil
		}
		in := scenario.Input{UserID: c.Sender().ID, ChatID: c.Chat().ID, Text: c.Text()}
		logCtx := h.logger.WithFields(logrus.Fields{"command": name, "sender_id": in.UserID})
		logCtx.Debug("Processing update")

		reply, err := fn(ctx, in)
		if err != nil {
			logCtx.WithError(err).Error("Failed to handle update")
			reply = errorReply
		}
		if reply == "" {
			return nil
		}
		return c.Send(reply)
	}
}

// Start greets known users and registers new ones.
func (h *Commands) Start(ctx context.Context, in scenario.Input) (string, error) {
	u, err := h.users.GetByID(ctx, in.UserID)
	if errors.Is(err, user.ErrUserNotFound) {
		if _, err := h.engine.Begin(ctx, scenario.KindRegistration, in); err != nil {
			return "", fmt.Errorf("failed to start registration: %w", err)
		}
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	return fmt.Sprintf("Welcome back, %s! Send /help to see what I can do.", u.Name), nil
}

func (h *Commands) Help(context.Context, scenario.Input) (string, error) {
	return helpText, nil
}

func (h *Commands) Cancel(ctx context.Context, in scenario.Input) (string, error) {
	cancelled, err := h.engine.Cancel(ctx, in.UserID)
	if err != nil {
		return "", err
	}
	if !cancelled {
		return "There is nothing to cancel.", nil
	}
	return "Cancelled.", nil
}

// Text feeds free text into the active scenario.
func (h *Commands) Text(ctx context.Context, in scenario.Input) (string, error) {
	handled, _, err := h.engine.Dispatch(ctx, in)
	if err != nil {
		return "", err
	}
	if !handled {
		return unknownTextReply, nil
	}
	return "", nil
}

func (h *Commands) begin(kind scenario.Kind) handlerFunc {
	return func(ctx context.Context, in scenario.Input) (string, error) {
		if _, err := h.engine.Begin(ctx, kind, in); err != nil {
			return "", fmt.Errorf("failed to start %s: %w", kind, err)
		}
		return "", nil
	}
}

// internal/app/notification_dispatch_job.go
package app

import (
	"context"
	"errors"
	"fitness_assistant_bot/internal/domain/notification"
	domainTelegram "fitness_assistant_bot/internal/domain/telegram"
	"fitness_assistant_bot/internal/domain/user"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const notificationDispatchInterval = time.Minute

// NotificationDispatchJob delivers due notifications through the chat transport.
type NotificationDispatchJob struct {
	ledger         *NotificationLedger
	users          user.Repository
	telegramClient domainTelegram.Client
	logger         *logrus.Entry
	now            Clock
}

func NewNotificationDispatchJob(ledger *NotificationLedger, users user.Repository, tc domainTelegram.Client, logger *logrus.Entry, clock Clock) *NotificationDispatchJob {
	return &NotificationDispatchJob{
		ledger:         ledger,
		users:          users,
		telegramClient: tc,
		logger:         logger.WithField("job", "notification_dispatch"),
		now:            orSystemClock(clock),
	}
}

func (j *NotificationDispatchJob) Name() string            { return "notification_dispatch" }
func (j *NotificationDispatchJob) Interval() time.Duration { return notificationDispatchInterval }

func (j *NotificationDispatchJob) Run(ctx context.Context) error {
	due, err := j.ledger.Due(ctx, j.now())
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}

	sent, failed := 0, 0
	for _, n := range due {
		logCtx := j.logger.WithFields(logrus.Fields{"notification_id": n.ID, "user_id": n.UserID, "type": n.Type})
		if err := j.deliver(ctx, n); err != nil {
			failed++
			if errors.Is(err, user.ErrUserNotFound) {
				logCtx.Warn("Notification owner not found, skipping")
				continue
			}
			logCtx.WithError(err).Error("Failed to deliver notification")
			continue
		}
		sent++
	}

	j.logger.Infof("Notification dispatch completed: %d sent, %d failed", sent, failed)
	return nil
}

func (j *NotificationDispatchJob) deliver(ctx context.Context, n *notification.Notification) error {
	owner, err := j.users.GetByID(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("failed to resolve owner: %w", err)
	}
	if err := j.telegramClient.SendMessage(owner.ChatID, n.Text, nil); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return j.ledger.MarkSent(ctx, n.ID, j.now())
}

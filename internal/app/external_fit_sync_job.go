// internal/app/external_fit_sync_job.go
package app

import (
	"context"
	"errors"
	"fitness_assistant_bot/internal/domain/activity"
	"fitness_assistant_bot/internal/domain/calendar"
	"fitness_assistant_bot/internal/domain/fit"
	"fitness_assistant_bot/internal/domain/user"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	externalFitSyncInterval = 15 * time.Minute
	// fetchTimeout bounds the provider calls for a single user.
	fetchTimeout = 30 * time.Second
)

var (
	ErrNoRefreshToken   = errors.New("fit credential expired and has no refresh token")
	ErrMalformedPayload = errors.New("malformed fit provider payload")
)

// ExternalFitSyncJob imports daily step and calorie totals from the fitness provider.
type ExternalFitSyncJob struct {
	users      user.Repository
	activities activity.Repository
	provider   fit.Provider
	logger     *logrus.Entry
	now        Clock
}

func NewExternalFitSyncJob(users user.Repository, activities activity.Repository, provider fit.Provider, logger *logrus.Entry, clock Clock) *ExternalFitSyncJob {
	return &ExternalFitSyncJob{
		users:      users,
		activities: activities,
		provider:   provider,
		logger:     logger.WithField("job", "external_fit_sync"),
		now:        orSystemClock(clock),
	}
}

func (j *ExternalFitSyncJob) Name() string            { return "external_fit_sync" }
func (j *ExternalFitSyncJob) Interval() time.Duration { return externalFitSyncInterval }

func (j *ExternalFitSyncJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	users, err := j.users.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	for _, u := range users {
		if u.Fit == nil || u.Fit.AccessToken == "" {
			continue
		}
		if err := j.syncUser(ctx, u, now); err != nil {
			j.logger.WithError(err).WithField("user_id", u.ID).Error("Failed to sync fit data for user")
		}
	}
	return nil
}

func (j *ExternalFitSyncJob) syncUser(ctx context.Context, u *user.User, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	cred := u.Fit
	if cred.Expired(now) {
		if cred.RefreshToken == "" {
			return ErrNoRefreshToken
		}
		tok, err := j.provider.RefreshToken(ctx, cred.RefreshToken)
		if err != nil {
			return fmt.Errorf("failed to refresh token: %w", err)
		}
		cred.AccessToken = tok.AccessToken
		if tok.RefreshToken != "" {
			cred.RefreshToken = tok.RefreshToken
		}
		cred.ExpiresAt = tok.Expiry
		if err := j.users.Save(ctx, u); err != nil {
			return fmt.Errorf("failed to save refreshed credential: %w", err)
		}
		j.logger.WithField("user_id", u.ID).Info("Fit credential refreshed")
	}

	daily, err := j.provider.GetDailyActivity(ctx, cred.AccessToken, now)
	if err != nil {
		return fmt.Errorf("failed to fetch daily activity: %w", err)
	}
	if daily == nil || daily.Steps < 0 || daily.Calories < 0 {
		return ErrMalformedPayload
	}

	day := calendar.DayKey(now)
	existing, err := j.activities.GetByUserDateAndSource(ctx, u.ID, day, activity.SourceGoogleFit)
	if err != nil {
		return fmt.Errorf("failed to look up synced activity: %w", err)
	}
	if existing == nil {
		err = j.activities.Add(ctx, &activity.Activity{
			UserID:         u.ID,
			Day:            day,
			Source:         activity.SourceGoogleFit,
			Steps:          daily.Steps,
			CaloriesBurned: daily.Calories,
		})
	} else {
		existing.Steps = daily.Steps
		existing.CaloriesBurned = daily.Calories
		existing.ActiveMinutes = 0 // not reported by the provider
		err = j.activities.Update(ctx, existing)
	}
	if err != nil {
		return fmt.Errorf("failed to store synced activity: %w", err)
	}

	j.logger.WithFields(logrus.Fields{"user_id": u.ID, "steps": daily.Steps, "calories": daily.Calories}).Debug("Fit data synced")
	return nil
}

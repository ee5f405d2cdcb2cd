package user

import (
	"fmt"
	"time"
)

// ReminderPreferences holds the master switch and the per-slot activity reminder flags.
type ReminderPreferences struct {
	Enabled   bool
	Morning   bool
	Lunch     bool
	Afternoon bool
	Evening   bool
}

// AllOn returns preferences with every slot enabled.
func AllOn() ReminderPreferences {
	return ReminderPreferences{Enabled: true, Morning: true, Lunch: true, Afternoon: true, Evening: true}
}

// TimeOfDay is a wall-clock time in minutes after UTC midnight.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// On returns the instant at this time of day on the UTC date of day.
func (t TimeOfDay) On(day time.Time) time.Time {
	d := day.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC).Add(time.Duration(t) * time.Minute)
}

// MealTimes are the configured meal times; nil means the meal is not tracked.
type MealTimes struct {
	Breakfast *TimeOfDay
	Lunch     *TimeOfDay
	Dinner    *TimeOfDay
}

// FitCredential is the third-party fitness provider credential of a user.
type FitCredential struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Expired reports whether the access token is no longer valid at t.
func (c *FitCredential) Expired(t time.Time) bool {
	return !c.ExpiresAt.After(t)
}

// User is a registered bot user. ID is the chat user identity.
type User struct {
	ID        int64
	ChatID    int64
	Name      string
	Age       int
	HeightCm  float64
	WeightKg  float64
	Reminders ReminderPreferences
	MealTimes MealTimes
	Fit       *FitCredential
	CreatedAt time.Time
	UpdatedAt time.Time
}

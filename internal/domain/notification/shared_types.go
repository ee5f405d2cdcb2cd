// internal/domain/notification/shared_types.go
package notification

// Type identifies what a notification is about. Each periodic job owns a
// disjoint set of types, which is what keeps their dedup checks independent.
type Type string

const (
	TypeMorningActivity   Type = "MORNING_ACTIVITY"
	TypeLunchTimeActivity Type = "LUNCH_TIME_ACTIVITY"
	TypeAfternoonActivity Type = "AFTERNOON_ACTIVITY"
	TypeEveningActivity   Type = "EVENING_ACTIVITY"

	TypeDailyGoalAchieved Type = "DAILY_GOAL_ACHIEVED"
	TypeDailyGoalProgress Type = "DAILY_GOAL_PROGRESS"

	TypeBreakfastReminder Type = "BREAKFAST_REMINDER"
	TypeLunchReminder     Type = "LUNCH_REMINDER"
	TypeDinnerReminder    Type = "DINNER_REMINDER"
)

package scenario

// Kind tags a scenario variant.
type Kind string

const (
	KindRegistration             Kind = "REGISTRATION"
	KindBmi                      Kind = "BMI"
	KindAddMeal                  Kind = "ADD_MEAL"
	KindSetDailyGoal             Kind = "SET_DAILY_GOAL"
	KindMealTimeSetup            Kind = "MEAL_TIME_SETUP"
	KindEditProfile              Kind = "EDIT_PROFILE"
	KindActivityReminderSettings Kind = "ACTIVITY_REMINDER_SETTINGS"
	KindConnectExternalFit       Kind = "CONNECT_EXTERNAL_FIT"
)

// Status is the outcome of one scenario step.
type Status int

const (
	StatusInProgress Status = iota
	StatusCompleted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "in_progress"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is returned by a step function. Next, when set on a completed
// result, names the scenario to start once the current one is cleared.
type Result struct {
	Status Status
	Next   Kind
}

func InProgress() Result          { return Result{Status: StatusInProgress} }
func Completed() Result           { return Result{Status: StatusCompleted} }
func CompletedThen(k Kind) Result { return Result{Status: StatusCompleted, Next: k} }
func Failed() Result              { return Result{Status: StatusFailed} }

package goal

import (
	"context"
	"database/sql"
)

// DailyGoal is a user's target for one UTC day.
type DailyGoal struct {
	ID                int64        `db:"id"`
	UserID            int64        `db:"user_id"`
	Day               string       `db:"day"`
	TargetSteps       int          `db:"target_steps"`
	TargetCaloriesIn  int          `db:"target_calories_in"`
	TargetCaloriesOut int          `db:"target_calories_out"`
	IsCompleted       bool         `db:"is_completed"`
	CompletedAt       sql.NullTime `db:"completed_at"`
}

// Progress is what was achieved against a goal so far.
type Progress struct {
	Steps       int
	CaloriesIn  int
	CaloriesOut int
}

// StepsMet reports whether the step target is reached.
func (g *DailyGoal) StepsMet(p Progress) bool { return p.Steps >= g.TargetSteps }

// CaloriesInMet reports whether consumption stayed within the target.
func (g *DailyGoal) CaloriesInMet(p Progress) bool { return p.CaloriesIn <= g.TargetCaloriesIn }

// CaloriesOutMet reports whether enough calories were burned.
func (g *DailyGoal) CaloriesOutMet(p Progress) bool { return p.CaloriesOut >= g.TargetCaloriesOut }

// Met requires all three sub-goals at once.
func (g *DailyGoal) Met(p Progress) bool {
	return g.StepsMet(p) && g.CaloriesInMet(p) && g.CaloriesOutMet(p)
}

// Repository defines the goal ledger operations.
type Repository interface {
	// GetByUserAndDate returns nil, nil when the user has no goal for day.
	GetByUserAndDate(ctx context.Context, userID int64, day string) (*DailyGoal, error)
	// Save inserts or updates the goal for its (user, day).
	Save(ctx context.Context, g *DailyGoal) error
}

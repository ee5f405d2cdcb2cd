package meal

import (
	"context"
	"strings"
	"time"
)

// Kind is the meal slot a logged meal belongs to.
type Kind string

const (
	KindBreakfast Kind = "BREAKFAST"
	KindLunch     Kind = "LUNCH"
	KindDinner    Kind = "DINNER"
	KindSnack     Kind = "SNACK"
)

// ParseKind maps user input such as "lunch" to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindBreakfast:
		return KindBreakfast, true
	case KindLunch:
		return KindLunch, true
	case KindDinner:
		return KindDinner, true
	case KindSnack:
		return KindSnack, true
	}
	return "", false
}

// Meal is one logged meal.
type Meal struct {
	ID       int64     `db:"id"`
	UserID   int64     `db:"user_id"`
	Name     string    `db:"name"`
	Kind     Kind      `db:"kind"`
	Calories int       `db:"calories"`
	EatenAt  time.Time `db:"eaten_at"`
}

// TotalCalories sums the calories of meals.
func TotalCalories(meals []*Meal) int {
	total := 0
	for _, m := range meals {
		total += m.Calories
	}
	return total
}

// Repository defines the meal ledger operations.
type Repository interface {
	// GetByUserAndPeriod returns meals eaten in [from, to].
	GetByUserAndPeriod(ctx context.Context, userID int64, from, to time.Time) ([]*Meal, error)
	Add(ctx context.Context, m *Meal) error
}

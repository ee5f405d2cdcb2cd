package goal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetRequiresAllThreeTargets(t *testing.T) {
	g := &DailyGoal{TargetSteps: 10000, TargetCaloriesIn: 2000, TargetCaloriesOut: 500}

	tests := []struct {
		name     string
		progress Progress
		want     bool
	}{
		{"all met", Progress{Steps: 10000, CaloriesIn: 1800, CaloriesOut: 600}, true},
		{"one step short", Progress{Steps: 9999, CaloriesIn: 1800, CaloriesOut: 600}, false},
		{"ate too much", Progress{Steps: 12000, CaloriesIn: 2001, CaloriesOut: 600}, false},
		{"burned too little", Progress{Steps: 12000, CaloriesIn: 1500, CaloriesOut: 499}, false},
		{"exact limits", Progress{Steps: 10000, CaloriesIn: 2000, CaloriesOut: 500}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Met(tt.progress))
		})
	}
}

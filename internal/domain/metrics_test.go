package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func goalPtr(g FitnessGoal) *FitnessGoal { return &g }

func TestBMI(t *testing.T) {
	t.Run("computes and rounds to one decimal", func(t *testing.T) {
		// 70 / 1.75^2 = 22.857... -> 22.9
		bmi := BMI(floatPtr(70), floatPtr(175))
		require.NotNil(t, bmi)
		assert.Equal(t, 22.9, *bmi)
	})

	t.Run("nil when weight missing", func(t *testing.T) {
		assert.Nil(t, BMI(nil, floatPtr(175)))
	})

	t.Run("nil when height missing", func(t *testing.T) {
		assert.Nil(t, BMI(floatPtr(70), nil))
	})
}

func TestBMICategory(t *testing.T) {
	tests := []struct {
		name     string
		bmi      *float64
		expected *string
	}{
		{"underweight below 18.5", floatPtr(18.4), strPtr("Underweight")},
		{"normal at 18.5", floatPtr(18.5), strPtr("Normal")},
		{"normal below 25", floatPtr(24.9), strPtr("Normal")},
		{"overweight at 25", floatPtr(25.0), strPtr("Overweight")},
		{"obese at 30", floatPtr(30.0), strPtr("Obese")},
		{"nil in nil out", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BMICategory(tt.bmi)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.expected, *got)
		})
	}
}

func strPtr(s string) *string { return &s }

func TestDailyCalorieNeeds(t *testing.T) {
	t.Run("mifflin-st jeor with activity multiplier", func(t *testing.T) {
		u := &User{
			Weight:        floatPtr(70),
			Height:        floatPtr(175),
			Age:           intPtr(30),
			ActivityLevel: ActivityModeratelyActive,
		}
		// BMR = 10*70 + 6.25*175 - 5*30 + 5 = 1648.75; *1.55 = 2555.5625 -> 2556
		needs := DailyCalorieNeeds(u)
		require.NotNil(t, needs)
		assert.Equal(t, 2556.0, *needs)
	})

	t.Run("sedentary multiplier", func(t *testing.T) {
		u := &User{
			Weight:        floatPtr(70),
			Height:        floatPtr(175),
			Age:           intPtr(30),
			ActivityLevel: ActivitySedentary,
		}
		// 1648.75 * 1.2 = 1978.5 -> 1979 (round half up)
		needs := DailyCalorieNeeds(u)
		require.NotNil(t, needs)
		assert.Equal(t, 1979.0, *needs)
	})

	t.Run("nil when any input missing", func(t *testing.T) {
		assert.Nil(t, DailyCalorieNeeds(&User{Weight: floatPtr(70), Height: floatPtr(175)}))
		assert.Nil(t, DailyCalorieNeeds(&User{Weight: floatPtr(70), Age: intPtr(30)}))
		assert.Nil(t, DailyCalorieNeeds(&User{Height: floatPtr(175), Age: intPtr(30)}))
	})
}

func TestProfileCompletion(t *testing.T) {
	t.Run("five of seven fields", func(t *testing.T) {
		u := &User{
			Name:          "Jane Smith",
			Email:         "jane@example.com",
			Age:           intPtr(28),
			Weight:        floatPtr(60),
			ActivityLevel: ActivityModeratelyActive,
		}
		// round(5/7*100) = 71
		assert.Equal(t, 71, ProfileCompletion(u))
	})

	t.Run("all fields", func(t *testing.T) {
		u := &User{
			Name:          "Jane Smith",
			Email:         "jane@example.com",
			Age:           intPtr(28),
			Weight:        floatPtr(60),
			Height:        floatPtr(165),
			FitnessGoal:   goalPtr(GoalEndurance),
			ActivityLevel: ActivityVeryActive,
		}
		assert.Equal(t, 100, ProfileCompletion(u))
	})
}

func TestCaloriesPerMinute(t *testing.T) {
	w := &Workout{CaloriesBurned: 300, Duration: 45}
	assert.Equal(t, 6.7, CaloriesPerMinute(w)) // 6.666... -> 6.7

	assert.Equal(t, 0.0, CaloriesPerMinute(&Workout{CaloriesBurned: 300}))
}

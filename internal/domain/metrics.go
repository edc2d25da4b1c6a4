package domain

import "math"

// Derived metrics are pure functions over entity snapshots. Nothing here is
// persisted; handlers recompute on every read so partial updates can never
// leave a stale cached value behind.

var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:        1.2,
	ActivityLightlyActive:    1.375,
	ActivityModeratelyActive: 1.55,
	ActivityVeryActive:       1.725,
	ActivityExtraActive:      1.9,
}

// BMI category thresholds (WHO).
const (
	bmiUnderweightMax = 18.5
	bmiNormalMax      = 25.0
	bmiOverweightMax  = 30.0
)

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// BMI returns weight/(height/100)^2 rounded to one decimal, or nil when
// either input is missing.
func BMI(weight, height *float64) *float64 {
	if weight == nil || height == nil || *height == 0 {
		return nil
	}
	m := *height / 100
	bmi := round1(*weight / (m * m))
	return &bmi
}

// BMICategory maps a BMI value onto its label, nil in for nil out.
func BMICategory(bmi *float64) *string {
	if bmi == nil {
		return nil
	}
	var cat string
	switch {
	case *bmi < bmiUnderweightMax:
		cat = "Underweight"
	case *bmi < bmiNormalMax:
		cat = "Normal"
	case *bmi < bmiOverweightMax:
		cat = "Overweight"
	default:
		cat = "Obese"
	}
	return &cat
}

// DailyCalorieNeeds estimates maintenance calories from the Mifflin-St Jeor
// BMR scaled by the user's activity level. Returns nil when weight, height
// or age is missing.
func DailyCalorieNeeds(u *User) *float64 {
	if u.Weight == nil || u.Height == nil || u.Age == nil {
		return nil
	}
	multiplier, ok := activityMultipliers[u.ActivityLevel]
	if !ok {
		multiplier = activityMultipliers[DefaultActivityLevel]
	}
	bmr := 10**u.Weight + 6.25**u.Height - 5*float64(*u.Age) + 5
	needs := math.Round(bmr * multiplier)
	return &needs
}

// ProfileCompletion scores how much of the profile is filled in: the count
// of present fields among name, email, age, weight, height, fitnessGoal and
// activityLevel over seven, as a rounded percentage.
func ProfileCompletion(u *User) int {
	total := 7
	present := 0
	if u.Name != "" {
		present++
	}
	if u.Email != "" {
		present++
	}
	if u.Age != nil {
		present++
	}
	if u.Weight != nil {
		present++
	}
	if u.Height != nil {
		present++
	}
	if u.FitnessGoal != nil {
		present++
	}
	if u.ActivityLevel != "" {
		present++
	}
	return int(math.Round(float64(present) / float64(total) * 100))
}

// CaloriesPerMinute returns caloriesBurned/duration rounded to one decimal,
// 0 for a zero duration.
func CaloriesPerMinute(w *Workout) float64 {
	if w.Duration == 0 {
		return 0
	}
	return round1(w.CaloriesBurned / w.Duration)
}

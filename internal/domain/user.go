package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FitnessGoal classifies what a user is training towards.
type FitnessGoal string

const (
	GoalWeightLoss     FitnessGoal = "weight_loss"
	GoalMuscleGain     FitnessGoal = "muscle_gain"
	GoalEndurance      FitnessGoal = "endurance"
	GoalFlexibility    FitnessGoal = "flexibility"
	GoalGeneralFitness FitnessGoal = "general_fitness"
)

// ActivityLevel drives the daily-calorie-needs multiplier.
type ActivityLevel string

const (
	ActivitySedentary        ActivityLevel = "sedentary"
	ActivityLightlyActive    ActivityLevel = "lightly_active"
	ActivityModeratelyActive ActivityLevel = "moderately_active"
	ActivityVeryActive       ActivityLevel = "very_active"
	ActivityExtraActive      ActivityLevel = "extra_active"
)

// DefaultActivityLevel is applied when a user is created without one.
const DefaultActivityLevel = ActivityModeratelyActive

// ValidFitnessGoal reports whether g is one of the known goals.
func ValidFitnessGoal(g FitnessGoal) bool {
	switch g {
	case GoalWeightLoss, GoalMuscleGain, GoalEndurance, GoalFlexibility, GoalGeneralFitness:
		return true
	}
	return false
}

// ValidActivityLevel reports whether l is one of the known levels.
func ValidActivityLevel(l ActivityLevel) bool {
	_, ok := activityMultipliers[l]
	return ok
}

// User is a tracked account. Email is unique across the collection.
// Optional body metrics (age, weight, height) feed the derived values in
// metrics.go and are stored as pointers so "absent" survives round-trips.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Email         string             `bson:"email" json:"email"`
	Age           *int               `bson:"age,omitempty" json:"age,omitempty"`
	Weight        *float64           `bson:"weight,omitempty" json:"weight,omitempty"` // kg
	Height        *float64           `bson:"height,omitempty" json:"height,omitempty"` // cm
	FitnessGoal   *FitnessGoal       `bson:"fitnessGoal,omitempty" json:"fitnessGoal,omitempty"`
	ActivityLevel ActivityLevel      `bson:"activityLevel" json:"activityLevel"`
	IsActive      bool               `bson:"isActive" json:"isActive"`

	// ProfileCompletion is recomputed on every write, never accepted
	// from a caller. See ProfileCompletion in metrics.go.
	ProfileCompletion int `bson:"profileCompletion" json:"profileCompletion"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

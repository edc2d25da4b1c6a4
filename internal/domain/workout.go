package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseType is the fixed category set for workouts.
type ExerciseType string

const (
	ExerciseRunning       ExerciseType = "running"
	ExerciseCycling       ExerciseType = "cycling"
	ExerciseSwimming      ExerciseType = "swimming"
	ExerciseWeightlifting ExerciseType = "weightlifting"
	ExerciseBodyweight    ExerciseType = "bodyweight"
	ExerciseYoga          ExerciseType = "yoga"
	ExercisePilates       ExerciseType = "pilates"
	ExerciseCrossfit      ExerciseType = "crossfit"
	ExerciseHIIT          ExerciseType = "hiit"
	ExerciseWalking       ExerciseType = "walking"
	ExerciseHiking        ExerciseType = "hiking"
	ExerciseSports        ExerciseType = "sports"
	ExerciseOther         ExerciseType = "other"
)

// ExerciseTypes lists every valid category, in declaration order.
var ExerciseTypes = []ExerciseType{
	ExerciseRunning, ExerciseCycling, ExerciseSwimming, ExerciseWeightlifting,
	ExerciseBodyweight, ExerciseYoga, ExercisePilates, ExerciseCrossfit,
	ExerciseHIIT, ExerciseWalking, ExerciseHiking, ExerciseSports, ExerciseOther,
}

// ValidExerciseType reports whether t is one of the known categories.
func ValidExerciseType(t ExerciseType) bool {
	for _, known := range ExerciseTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Intensity describes perceived workout effort.
type Intensity string

const (
	IntensityLow      Intensity = "low"
	IntensityModerate Intensity = "moderate"
	IntensityHigh     Intensity = "high"
	IntensityExtreme  Intensity = "extreme"
)

// DefaultIntensity is applied when a workout is created without one.
const DefaultIntensity = IntensityModerate

// ValidIntensity reports whether i is one of the known intensities.
func ValidIntensity(i Intensity) bool {
	switch i {
	case IntensityLow, IntensityModerate, IntensityHigh, IntensityExtreme:
		return true
	}
	return false
}

// ExerciseEntry is one exercise performed within a workout. Sets, reps and
// weight are optional; order within the workout is significant.
type ExerciseEntry struct {
	Name   string   `bson:"name" json:"name"`
	Sets   *int     `bson:"sets,omitempty" json:"sets,omitempty"`
	Reps   *int     `bson:"reps,omitempty" json:"reps,omitempty"`
	Weight *float64 `bson:"weight,omitempty" json:"weight,omitempty"` // kg
}

// Workout is a single logged session owned by a User. The owning user must
// exist when the workout is created or reassigned; the user side enforces
// the reverse (no delete while workouts remain).
type Workout struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	Title          string             `bson:"title" json:"title"`
	ExerciseType   ExerciseType       `bson:"exerciseType" json:"exerciseType"`
	Duration       float64            `bson:"duration" json:"duration"` // minutes
	CaloriesBurned float64            `bson:"caloriesBurned" json:"caloriesBurned"`
	Intensity      Intensity          `bson:"intensity" json:"intensity"`
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
	WorkoutDate    time.Time          `bson:"workoutDate" json:"workoutDate"`
	Completed      bool               `bson:"completed" json:"completed"`
	Exercises      []ExerciseEntry    `bson:"exercises,omitempty" json:"exercises,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

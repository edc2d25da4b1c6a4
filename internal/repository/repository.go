package repository

import (
	"context"
	"time"

	"fittrack/fitness-api/internal/domain"
	"fittrack/fitness-api/internal/query"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound       = RepositoryError("not found")
	ErrDuplicateEmail = RepositoryError("email already registered")
	ErrUpdateFailed   = RepositoryError("update failed")
	ErrDeleteFailed   = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository is the persistence contract for the users collection.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, q *query.UserQuery) ([]domain.User, error)
	// Count ignores pagination: it sizes the full match set so the caller
	// can compute total pages.
	Count(ctx context.Context, filter query.UserFilter) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// WorkoutRepository is the persistence contract for the workouts
// collection, including the aggregation reads behind the statistics engine.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	List(ctx context.Context, q *query.WorkoutQuery) ([]domain.Workout, error)
	Count(ctx context.Context, filter query.WorkoutFilter) (int64, error)
	Update(ctx context.Context, workout *domain.Workout) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// CountByUser counts every workout owned by the user, completed or
	// not. Backs the delete-while-owning-workouts check.
	CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)

	// UserTotals sums the user's completed workouts.
	UserTotals(ctx context.Context, userID primitive.ObjectID) (*UserTotals, error)
	// CountCompletedSince counts the user's completed workouts with a
	// workoutDate at or after since.
	CountCompletedSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (int64, error)
	// RecentByUser returns the user's most recent workouts by
	// workoutDate descending.
	RecentByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.Workout, error)

	// GlobalTotals aggregates over the whole collection.
	GlobalTotals(ctx context.Context) (*GlobalTotals, error)
	// GroupByExerciseType groups completed workouts by type, largest
	// group first.
	GroupByExerciseType(ctx context.Context) ([]ExerciseTypeGroup, error)
	// GroupByIntensity groups completed workouts by intensity, largest
	// group first.
	GroupByIntensity(ctx context.Context) ([]IntensityGroup, error)
	// MostActiveUsers ranks users by completed-workout count, joined
	// with the owning user's name and email. Ties order by user id
	// ascending.
	MostActiveUsers(ctx context.Context, limit int) ([]UserActivity, error)
}

// UserTotals is the per-user completed-workout rollup.
type UserTotals struct {
	Workouts      int64   `bson:"workouts"`
	TotalCalories float64 `bson:"totalCalories"`
	TotalDuration float64 `bson:"totalDuration"`
}

// GlobalTotals is the collection-wide rollup.
type GlobalTotals struct {
	TotalWorkouts     int64   `bson:"totalWorkouts"`
	CompletedWorkouts int64   `bson:"completedWorkouts"`
	TotalCalories     float64 `bson:"totalCalories"`
	TotalDuration     float64 `bson:"totalDuration"`
	AvgCalories       float64 `bson:"avgCalories"`
	AvgDuration       float64 `bson:"avgDuration"`
}

// ExerciseTypeGroup is one per-type bucket of completed workouts.
type ExerciseTypeGroup struct {
	ExerciseType  domain.ExerciseType `bson:"_id"`
	Count         int64               `bson:"count"`
	TotalCalories float64             `bson:"totalCalories"`
	AvgCalories   float64             `bson:"avgCalories"`
	AvgDuration   float64             `bson:"avgDuration"`
}

// IntensityGroup is one per-intensity bucket of completed workouts.
type IntensityGroup struct {
	Intensity   domain.Intensity `bson:"_id"`
	Count       int64            `bson:"count"`
	AvgCalories float64          `bson:"avgCalories"`
	AvgDuration float64          `bson:"avgDuration"`
}

// UserActivity is one row of the most-active-users ranking.
type UserActivity struct {
	UserID        primitive.ObjectID `bson:"_id"`
	Name          string             `bson:"name"`
	Email         string             `bson:"email"`
	Workouts      int64              `bson:"workouts"`
	TotalCalories float64            `bson:"totalCalories"`
	TotalDuration float64            `bson:"totalDuration"`
}

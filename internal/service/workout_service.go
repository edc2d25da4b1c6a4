package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"fittrack/fitness-api/internal/domain"
	"fittrack/fitness-api/internal/query"
	"fittrack/fitness-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field bounds for workouts.
const (
	minTitleLen = 3
	maxTitleLen = 100
	minDuration = 1.0
	maxDuration = 600.0
	minCalories = 1.0
	maxCalories = 5000.0
	maxNotesLen = 500
)

// ExerciseEntryInput is one exercise line inside a workout payload.
type ExerciseEntryInput struct {
	Name   string
	Sets   *int
	Reps   *int
	Weight *float64
}

// CreateWorkoutInput carries a new workout's fields.
type CreateWorkoutInput struct {
	UserID         string
	Title          string
	ExerciseType   domain.ExerciseType
	Duration       float64
	CaloriesBurned float64
	Intensity      *domain.Intensity
	Notes          string
	WorkoutDate    time.Time
	Completed      *bool
	Exercises      []ExerciseEntryInput
}

// UpdateWorkoutInput carries a partial update; nil fields are left
// untouched.
type UpdateWorkoutInput struct {
	UserID         *string
	Title          *string
	ExerciseType   *domain.ExerciseType
	Duration       *float64
	CaloriesBurned *float64
	Intensity      *domain.Intensity
	Notes          *string
	WorkoutDate    *time.Time
	Completed      *bool
	Exercises      []ExerciseEntryInput // nil keeps the stored sequence
}

// WorkoutService is the application boundary for workout CRUD.
type WorkoutService interface {
	Create(ctx context.Context, input CreateWorkoutInput) (*domain.Workout, error)
	Get(ctx context.Context, id string) (*domain.Workout, error)
	List(ctx context.Context, q *query.WorkoutQuery) ([]domain.Workout, query.Pagination, error)
	Update(ctx context.Context, id string, input UpdateWorkoutInput) (*domain.Workout, error)
	Delete(ctx context.Context, id string) error
}

// workoutService implements WorkoutService. The clock is injected so the
// not-in-the-future rule on workoutDate is testable.
type workoutService struct {
	workoutRepo repository.WorkoutRepository
	userRepo    repository.UserRepository
	now         func() time.Time
}

// NewWorkoutService creates a new workout service.
func NewWorkoutService(workoutRepo repository.WorkoutRepository, userRepo repository.UserRepository, now func() time.Time) WorkoutService {
	if now == nil {
		now = time.Now
	}
	return &workoutService{workoutRepo: workoutRepo, userRepo: userRepo, now: now}
}

// Create validates the payload, verifies the owning user exists and stores
// the workout. Every check precedes the single insert, so a failed
// existence check leaves no record behind.
func (s *workoutService) Create(ctx context.Context, input CreateWorkoutInput) (*domain.Workout, error) {
	userID, err := primitive.ObjectIDFromHex(input.UserID)
	if err != nil {
		return nil, domain.NotFoundError("user", input.UserID)
	}

	workout := &domain.Workout{
		UserID:         userID,
		Title:          strings.TrimSpace(input.Title),
		ExerciseType:   input.ExerciseType,
		Duration:       input.Duration,
		CaloriesBurned: input.CaloriesBurned,
		Intensity:      domain.DefaultIntensity,
		Notes:          input.Notes,
		WorkoutDate:    input.WorkoutDate,
		Completed:      true,
		Exercises:      mapExerciseEntries(input.Exercises),
	}
	if input.Intensity != nil {
		workout.Intensity = *input.Intensity
	}
	if input.Completed != nil {
		workout.Completed = *input.Completed
	}

	if violations := s.validateWorkout(workout); len(violations) > 0 {
		return nil, domain.ValidationError("workout validation failed", violations...)
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFoundError("user", input.UserID)
		}
		return nil, domain.InternalError("failed to verify workout owner", err)
	}

	id, err := s.workoutRepo.Create(ctx, workout)
	if err != nil {
		return nil, domain.InternalError("failed to create workout", err)
	}
	workout.ID = id
	return workout, nil
}

// Get retrieves a single workout.
func (s *workoutService) Get(ctx context.Context, id string) (*domain.Workout, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.NotFoundError("workout", id)
	}
	workout, err := s.workoutRepo.GetByID(ctx, objectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFoundError("workout", id)
		}
		return nil, domain.InternalError("failed to load workout", err)
	}
	return workout, nil
}

// List runs the descriptor against the store and sizes the full match set
// for the page metadata.
func (s *workoutService) List(ctx context.Context, q *query.WorkoutQuery) ([]domain.Workout, query.Pagination, error) {
	workouts, err := s.workoutRepo.List(ctx, q)
	if err != nil {
		return nil, query.Pagination{}, domain.InternalError("failed to list workouts", err)
	}
	total, err := s.workoutRepo.Count(ctx, q.Filter)
	if err != nil {
		return nil, query.Pagination{}, domain.InternalError("failed to count workouts", err)
	}
	return workouts, query.NewPagination(q.Page, total), nil
}

// Update merges the partial input into the stored workout. Reassigning the
// owner re-runs the existence check against the new user.
func (s *workoutService) Update(ctx context.Context, id string, input UpdateWorkoutInput) (*domain.Workout, error) {
	workout, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ownerChanged := false
	if input.UserID != nil {
		newOwner, err := primitive.ObjectIDFromHex(*input.UserID)
		if err != nil {
			return nil, domain.NotFoundError("user", *input.UserID)
		}
		ownerChanged = newOwner != workout.UserID
		workout.UserID = newOwner
	}
	if input.Title != nil {
		workout.Title = strings.TrimSpace(*input.Title)
	}
	if input.ExerciseType != nil {
		workout.ExerciseType = *input.ExerciseType
	}
	if input.Duration != nil {
		workout.Duration = *input.Duration
	}
	if input.CaloriesBurned != nil {
		workout.CaloriesBurned = *input.CaloriesBurned
	}
	if input.Intensity != nil {
		workout.Intensity = *input.Intensity
	}
	if input.Notes != nil {
		workout.Notes = *input.Notes
	}
	if input.WorkoutDate != nil {
		workout.WorkoutDate = *input.WorkoutDate
	}
	if input.Completed != nil {
		workout.Completed = *input.Completed
	}
	if input.Exercises != nil {
		workout.Exercises = mapExerciseEntries(input.Exercises)
	}

	if violations := s.validateWorkout(workout); len(violations) > 0 {
		return nil, domain.ValidationError("workout validation failed", violations...)
	}

	if ownerChanged {
		if _, err := s.userRepo.GetByID(ctx, workout.UserID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, domain.NotFoundError("user", workout.UserID.Hex())
			}
			return nil, domain.InternalError("failed to verify workout owner", err)
		}
	}

	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFoundError("workout", id)
		}
		return nil, domain.InternalError("failed to update workout", err)
	}
	return workout, nil
}

// Delete removes a workout. No referential checks run from this side.
func (s *workoutService) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.NotFoundError("workout", id)
	}
	if err := s.workoutRepo.Delete(ctx, objectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NotFoundError("workout", id)
		}
		return domain.InternalError("failed to delete workout", err)
	}
	return nil
}

func mapExerciseEntries(inputs []ExerciseEntryInput) []domain.ExerciseEntry {
	if inputs == nil {
		return nil
	}
	entries := make([]domain.ExerciseEntry, len(inputs))
	for i, in := range inputs {
		entries[i] = domain.ExerciseEntry{
			Name:   strings.TrimSpace(in.Name),
			Sets:   in.Sets,
			Reps:   in.Reps,
			Weight: in.Weight,
		}
	}
	return entries
}

// validateWorkout checks every field bound, including the wall-clock rule
// on workoutDate, and collects all violations.
func (s *workoutService) validateWorkout(w *domain.Workout) []domain.FieldError {
	var violations []domain.FieldError

	// Bounds count runes, matching the handler binding tags.
	if n := utf8.RuneCountInString(w.Title); n < minTitleLen || n > maxTitleLen {
		violations = append(violations, domain.FieldError{
			Field: "title", Message: fmt.Sprintf("must be %d-%d characters", minTitleLen, maxTitleLen), Value: w.Title,
		})
	}
	if !domain.ValidExerciseType(w.ExerciseType) {
		violations = append(violations, domain.FieldError{
			Field: "exerciseType", Message: "unknown exercise type", Value: string(w.ExerciseType),
		})
	}
	if w.Duration < minDuration || w.Duration > maxDuration {
		violations = append(violations, domain.FieldError{
			Field: "duration", Message: fmt.Sprintf("must be between %g and %g minutes", minDuration, maxDuration), Value: w.Duration,
		})
	}
	if w.CaloriesBurned < minCalories || w.CaloriesBurned > maxCalories {
		violations = append(violations, domain.FieldError{
			Field: "caloriesBurned", Message: fmt.Sprintf("must be between %g and %g", minCalories, maxCalories), Value: w.CaloriesBurned,
		})
	}
	if !domain.ValidIntensity(w.Intensity) {
		violations = append(violations, domain.FieldError{
			Field: "intensity", Message: "unknown intensity", Value: string(w.Intensity),
		})
	}
	if utf8.RuneCountInString(w.Notes) > maxNotesLen {
		violations = append(violations, domain.FieldError{
			Field: "notes", Message: fmt.Sprintf("must be at most %d characters", maxNotesLen),
		})
	}
	if w.WorkoutDate.IsZero() {
		violations = append(violations, domain.FieldError{
			Field: "workoutDate", Message: "is required",
		})
	} else if w.WorkoutDate.After(s.now()) {
		violations = append(violations, domain.FieldError{
			Field: "workoutDate", Message: "must not be in the future", Value: w.WorkoutDate,
		})
	}
	for i, entry := range w.Exercises {
		prefix := fmt.Sprintf("exercises[%d]", i)
		if entry.Name == "" {
			violations = append(violations, domain.FieldError{
				Field: prefix + ".name", Message: "is required",
			})
		}
		if entry.Sets != nil && *entry.Sets < 1 {
			violations = append(violations, domain.FieldError{
				Field: prefix + ".sets", Message: "must be a positive integer", Value: *entry.Sets,
			})
		}
		if entry.Reps != nil && *entry.Reps < 1 {
			violations = append(violations, domain.FieldError{
				Field: prefix + ".reps", Message: "must be a positive integer", Value: *entry.Reps,
			})
		}
		if entry.Weight != nil && *entry.Weight < 0 {
			violations = append(violations, domain.FieldError{
				Field: prefix + ".weight", Message: "must not be negative", Value: *entry.Weight,
			})
		}
	}
	return violations
}

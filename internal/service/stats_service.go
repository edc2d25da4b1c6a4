package service

import (
	"context"
	"errors"
	"math"
	"time"

	"fittrack/fitness-api/internal/domain"
	"fittrack/fitness-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	recentWorkoutsLimit = 5
	mostActiveLimit     = 5

	caloriesMilestoneStep = 1000
	workoutsMilestoneStep = 10
)

// Consistency labels derived from the 7-day completed-workout count.
const (
	ConsistencyHigh     = "High"
	ConsistencyModerate = "Moderate"
	ConsistencyLow      = "Low"
)

// UserStats is the per-user statistics rollup.
type UserStats struct {
	User           UserStatsProfile `json:"user"`
	Workouts       WorkoutCounts    `json:"workouts"`
	Calories       CalorieStats     `json:"calories"`
	Time           TimeStats        `json:"time"`
	RecentWorkouts []WorkoutSummary `json:"recentWorkouts"`
	Consistency    string           `json:"consistency"`
	Milestones     Milestones       `json:"milestones"`
}

// UserStatsProfile merges identity with the derived profile metrics.
type UserStatsProfile struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	BMI               *float64 `json:"bmi"`
	BMICategory       *string  `json:"bmiCategory"`
	DailyCalorieNeeds *float64 `json:"dailyCalorieNeeds"`
	ProfileCompletion int      `json:"profileCompletion"`
}

// WorkoutCounts covers lifetime and rolling-window workout counts.
type WorkoutCounts struct {
	Total      int64   `json:"total"`
	Last7Days  int64   `json:"last7Days"`
	Last30Days int64   `json:"last30Days"`
	AvgPerWeek float64 `json:"avgPerWeek"`
}

// CalorieStats covers burned-calorie totals and averages.
type CalorieStats struct {
	TotalBurned   float64 `json:"totalBurned"`
	AvgPerWorkout float64 `json:"avgPerWorkout"`
}

// TimeStats covers exercise-time totals and averages, in minutes.
type TimeStats struct {
	TotalMinutes  float64 `json:"totalMinutes"`
	AvgPerWorkout float64 `json:"avgPerWorkout"`
}

// WorkoutSummary is the lightweight recent-workout line item.
type WorkoutSummary struct {
	ID             string              `json:"id"`
	Title          string              `json:"title"`
	ExerciseType   domain.ExerciseType `json:"exerciseType"`
	Duration       float64             `json:"duration"`
	CaloriesBurned float64             `json:"caloriesBurned"`
	WorkoutDate    time.Time           `json:"workoutDate"`
}

// Milestones are floor-rounded achievement markers.
type Milestones struct {
	Calories int64 `json:"calories"` // total burned, floored to the nearest 1000
	Workouts int64 `json:"workouts"` // total completed, floored to the nearest 10
}

// WorkoutStats is the global statistics rollup.
type WorkoutStats struct {
	Overall         OverallStats         `json:"overall"`
	ByExerciseType  []ExerciseTypeStats  `json:"byExerciseType"`
	ByIntensity     []IntensityStats     `json:"byIntensity"`
	ActiveUsers     int64                `json:"activeUsers"`
	MostActiveUsers []MostActiveUserStat `json:"mostActiveUsers"`
}

// OverallStats covers the whole workouts collection.
type OverallStats struct {
	TotalWorkouts     int64   `json:"totalWorkouts"`
	CompletedWorkouts int64   `json:"completedWorkouts"`
	TotalCalories     float64 `json:"totalCalories"`
	TotalDuration     float64 `json:"totalDuration"`
	AvgCalories       float64 `json:"avgCalories"`
	AvgDuration       float64 `json:"avgDuration"`
	CompletionRate    int     `json:"completionRate"` // percent, rounded
}

// ExerciseTypeStats is one per-type bucket.
type ExerciseTypeStats struct {
	ExerciseType  domain.ExerciseType `json:"exerciseType"`
	Count         int64               `json:"count"`
	TotalCalories float64             `json:"totalCalories"`
	AvgCalories   float64             `json:"avgCalories"`
	AvgDuration   float64             `json:"avgDuration"`
}

// IntensityStats is one per-intensity bucket.
type IntensityStats struct {
	Intensity   domain.Intensity `json:"intensity"`
	Count       int64            `json:"count"`
	AvgCalories float64          `json:"avgCalories"`
	AvgDuration float64          `json:"avgDuration"`
}

// MostActiveUserStat is one row of the top-users ranking.
type MostActiveUserStat struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Workouts      int64   `json:"workouts"`
	TotalCalories float64 `json:"totalCalories"`
	TotalDuration float64 `json:"totalDuration"`
}

// StatsService computes statistical rollups. It performs no writes, so a
// caller abandoning a computation has nothing to roll back.
type StatsService interface {
	UserStats(ctx context.Context, userID string) (*UserStats, error)
	WorkoutStats(ctx context.Context) (*WorkoutStats, error)
}

// statsService implements StatsService over the repositories.
//
// Each rollup is assembled from several independent store reads without
// snapshot isolation. Writes that land between those reads can produce
// statistics matching no single database state; that best-effort view is
// accepted for this domain.
//
// The clock is injected so the rolling 7/30-day windows are testable.
type statsService struct {
	userRepo    repository.UserRepository
	workoutRepo repository.WorkoutRepository
	now         func() time.Time
}

// NewStatsService creates a new statistics service. A nil now defaults to
// the wall clock.
func NewStatsService(userRepo repository.UserRepository, workoutRepo repository.WorkoutRepository, now func() time.Time) StatsService {
	if now == nil {
		now = time.Now
	}
	return &statsService{userRepo: userRepo, workoutRepo: workoutRepo, now: now}
}

// UserStats aggregates one user's completed workouts: lifetime totals,
// rolling 7/30-day windows measured back from the call instant, the five
// most recent sessions and the derived profile metrics.
func (s *statsService) UserStats(ctx context.Context, userID string) (*UserStats, error) {
	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.NotFoundError("user", userID)
	}

	user, err := s.userRepo.GetByID(ctx, objectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFoundError("user", userID)
		}
		return nil, domain.InternalError("failed to load user", err)
	}

	totals, err := s.workoutRepo.UserTotals(ctx, objectID)
	if err != nil {
		return nil, domain.InternalError("failed to aggregate user workouts", err)
	}

	now := s.now()
	last7, err := s.workoutRepo.CountCompletedSince(ctx, objectID, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, domain.InternalError("failed to count recent workouts", err)
	}
	last30, err := s.workoutRepo.CountCompletedSince(ctx, objectID, now.AddDate(0, 0, -30))
	if err != nil {
		return nil, domain.InternalError("failed to count recent workouts", err)
	}

	recent, err := s.workoutRepo.RecentByUser(ctx, objectID, recentWorkoutsLimit)
	if err != nil {
		return nil, domain.InternalError("failed to load recent workouts", err)
	}

	bmi := domain.BMI(user.Weight, user.Height)
	stats := &UserStats{
		User: UserStatsProfile{
			ID:                user.ID.Hex(),
			Name:              user.Name,
			Email:             user.Email,
			BMI:               bmi,
			BMICategory:       domain.BMICategory(bmi),
			DailyCalorieNeeds: domain.DailyCalorieNeeds(user),
			ProfileCompletion: user.ProfileCompletion,
		},
		Workouts: WorkoutCounts{
			Total:      totals.Workouts,
			Last7Days:  last7,
			Last30Days: last30,
			AvgPerWeek: round1(float64(last30) / 4),
		},
		Calories: CalorieStats{
			TotalBurned:   totals.TotalCalories,
			AvgPerWorkout: safeAvg(totals.TotalCalories, totals.Workouts),
		},
		Time: TimeStats{
			TotalMinutes:  totals.TotalDuration,
			AvgPerWorkout: safeAvg(totals.TotalDuration, totals.Workouts),
		},
		RecentWorkouts: make([]WorkoutSummary, 0, len(recent)),
		Consistency:    consistencyLabel(last7),
		Milestones: Milestones{
			Calories: int64(totals.TotalCalories) / caloriesMilestoneStep * caloriesMilestoneStep,
			Workouts: totals.Workouts / workoutsMilestoneStep * workoutsMilestoneStep,
		},
	}
	for _, w := range recent {
		stats.RecentWorkouts = append(stats.RecentWorkouts, WorkoutSummary{
			ID:             w.ID.Hex(),
			Title:          w.Title,
			ExerciseType:   w.ExerciseType,
			Duration:       w.Duration,
			CaloriesBurned: w.CaloriesBurned,
			WorkoutDate:    w.WorkoutDate,
		})
	}
	return stats, nil
}

// WorkoutStats aggregates the whole workouts collection plus the active
// user count and the top-5 most active users. An empty collection yields
// zero counts and empty groups, never an error.
func (s *statsService) WorkoutStats(ctx context.Context) (*WorkoutStats, error) {
	totals, err := s.workoutRepo.GlobalTotals(ctx)
	if err != nil {
		return nil, domain.InternalError("failed to aggregate workouts", err)
	}

	byType, err := s.workoutRepo.GroupByExerciseType(ctx)
	if err != nil {
		return nil, domain.InternalError("failed to group workouts by type", err)
	}
	byIntensity, err := s.workoutRepo.GroupByIntensity(ctx)
	if err != nil {
		return nil, domain.InternalError("failed to group workouts by intensity", err)
	}

	activeUsers, err := s.userRepo.CountActive(ctx)
	if err != nil {
		return nil, domain.InternalError("failed to count active users", err)
	}
	ranking, err := s.workoutRepo.MostActiveUsers(ctx, mostActiveLimit)
	if err != nil {
		return nil, domain.InternalError("failed to rank users", err)
	}

	stats := &WorkoutStats{
		Overall: OverallStats{
			TotalWorkouts:     totals.TotalWorkouts,
			CompletedWorkouts: totals.CompletedWorkouts,
			TotalCalories:     totals.TotalCalories,
			TotalDuration:     totals.TotalDuration,
			AvgCalories:       round1(totals.AvgCalories),
			AvgDuration:       round1(totals.AvgDuration),
			CompletionRate:    completionRate(totals.CompletedWorkouts, totals.TotalWorkouts),
		},
		ByExerciseType:  make([]ExerciseTypeStats, 0, len(byType)),
		ByIntensity:     make([]IntensityStats, 0, len(byIntensity)),
		ActiveUsers:     activeUsers,
		MostActiveUsers: make([]MostActiveUserStat, 0, len(ranking)),
	}
	for _, g := range byType {
		stats.ByExerciseType = append(stats.ByExerciseType, ExerciseTypeStats{
			ExerciseType:  g.ExerciseType,
			Count:         g.Count,
			TotalCalories: g.TotalCalories,
			AvgCalories:   round1(g.AvgCalories),
			AvgDuration:   round1(g.AvgDuration),
		})
	}
	for _, g := range byIntensity {
		stats.ByIntensity = append(stats.ByIntensity, IntensityStats{
			Intensity:   g.Intensity,
			Count:       g.Count,
			AvgCalories: round1(g.AvgCalories),
			AvgDuration: round1(g.AvgDuration),
		})
	}
	for _, row := range ranking {
		stats.MostActiveUsers = append(stats.MostActiveUsers, MostActiveUserStat{
			ID:            row.UserID.Hex(),
			Name:          row.Name,
			Email:         row.Email,
			Workouts:      row.Workouts,
			TotalCalories: row.TotalCalories,
			TotalDuration: row.TotalDuration,
		})
	}
	return stats, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// safeAvg divides total by count, returning 0 for an empty set instead of
// NaN.
func safeAvg(total float64, count int64) float64 {
	if count == 0 {
		return 0
	}
	return round1(total / float64(count))
}

func completionRate(completed, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

func consistencyLabel(last7 int64) string {
	switch {
	case last7 >= 3:
		return ConsistencyHigh
	case last7 >= 1:
		return ConsistencyModerate
	default:
		return ConsistencyLow
	}
}

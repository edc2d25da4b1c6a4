package api

import (
	"net/http"
	"time"

	"fittrack/fitness-api/internal/domain"
	"fittrack/fitness-api/internal/query"
	"fittrack/fitness-api/internal/service"

	"github.com/gin-gonic/gin"
)

// WorkoutHandler holds the workout service dependency.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- DTOs for API ---

// ExerciseEntryRequest is one exercise line in a workout payload.
type ExerciseEntryRequest struct {
	Name   string   `json:"name" binding:"required"`
	Sets   *int     `json:"sets" binding:"omitempty,min=1"`
	Reps   *int     `json:"reps" binding:"omitempty,min=1"`
	Weight *float64 `json:"weight" binding:"omitempty,min=0"`
}

// CreateWorkoutRequest defines the expected JSON for logging a workout.
type CreateWorkoutRequest struct {
	UserID         string                 `json:"userId" binding:"required"`
	Title          string                 `json:"title" binding:"required,min=3,max=100"`
	ExerciseType   string                 `json:"exerciseType" binding:"required"`
	Duration       float64                `json:"duration" binding:"required,min=1,max=600"`
	CaloriesBurned float64                `json:"caloriesBurned" binding:"required,min=1,max=5000"`
	Intensity      *string                `json:"intensity" binding:"omitempty,oneof=low moderate high extreme"`
	Notes          string                 `json:"notes" binding:"omitempty,max=500"`
	WorkoutDate    time.Time              `json:"workoutDate" binding:"required"`
	Completed      *bool                  `json:"completed"`
	Exercises      []ExerciseEntryRequest `json:"exercises" binding:"omitempty,dive"`
}

// UpdateWorkoutRequest is a partial update; omitted fields keep their
// stored values.
type UpdateWorkoutRequest struct {
	UserID         *string                `json:"userId"`
	Title          *string                `json:"title" binding:"omitempty,min=3,max=100"`
	ExerciseType   *string                `json:"exerciseType"`
	Duration       *float64               `json:"duration" binding:"omitempty,min=1,max=600"`
	CaloriesBurned *float64               `json:"caloriesBurned" binding:"omitempty,min=1,max=5000"`
	Intensity      *string                `json:"intensity" binding:"omitempty,oneof=low moderate high extreme"`
	Notes          *string                `json:"notes" binding:"omitempty,max=500"`
	WorkoutDate    *time.Time             `json:"workoutDate"`
	Completed      *bool                  `json:"completed"`
	Exercises      []ExerciseEntryRequest `json:"exercises" binding:"omitempty,dive"`
}

// WorkoutResponse is the DTO for returning a workout, with the derived
// calories-per-minute rate.
type WorkoutResponse struct {
	ID                string                 `json:"id"`
	UserID            string                 `json:"userId"`
	Title             string                 `json:"title"`
	ExerciseType      domain.ExerciseType    `json:"exerciseType"`
	Duration          float64                `json:"duration"`
	CaloriesBurned    float64                `json:"caloriesBurned"`
	CaloriesPerMinute float64                `json:"caloriesPerMinute"`
	Intensity         domain.Intensity       `json:"intensity"`
	Notes             string                 `json:"notes,omitempty"`
	WorkoutDate       time.Time              `json:"workoutDate"`
	Completed         bool                   `json:"completed"`
	Exercises         []domain.ExerciseEntry `json:"exercises,omitempty"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
}

// MapWorkoutToResponse converts a domain.Workout to WorkoutResponse.
func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	if w == nil {
		return WorkoutResponse{}
	}
	return WorkoutResponse{
		ID:                w.ID.Hex(),
		UserID:            w.UserID.Hex(),
		Title:             w.Title,
		ExerciseType:      w.ExerciseType,
		Duration:          w.Duration,
		CaloriesBurned:    w.CaloriesBurned,
		CaloriesPerMinute: domain.CaloriesPerMinute(w),
		Intensity:         w.Intensity,
		Notes:             w.Notes,
		WorkoutDate:       w.WorkoutDate,
		Completed:         w.Completed,
		Exercises:         w.Exercises,
		CreatedAt:         w.CreatedAt,
		UpdatedAt:         w.UpdatedAt,
	}
}

// MapWorkoutsToResponse converts a slice of workouts.
func MapWorkoutsToResponse(workouts []domain.Workout) []WorkoutResponse {
	responses := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		responses[i] = MapWorkoutToResponse(&workouts[i])
	}
	return responses
}

// --- Handler Methods ---

// ListWorkouts handles GET /workouts with filters, sort and pagination.
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	q, err := query.ParseWorkoutQuery(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	workouts, pagination, err := h.workoutService.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, MapWorkoutsToResponse(workouts), pagination)
}

// GetWorkout handles GET /workouts/:id.
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	workout, err := h.workoutService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, MapWorkoutToResponse(workout))
}

// CreateWorkout handles POST /workouts. Fails with 404 and writes nothing
// when the referenced user does not exist.
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	var req CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError(err))
		return
	}

	workout, err := h.workoutService.Create(c.Request.Context(), service.CreateWorkoutInput{
		UserID:         req.UserID,
		Title:          req.Title,
		ExerciseType:   domain.ExerciseType(req.ExerciseType),
		Duration:       req.Duration,
		CaloriesBurned: req.CaloriesBurned,
		Intensity:      intensityPtr(req.Intensity),
		Notes:          req.Notes,
		WorkoutDate:    req.WorkoutDate,
		Completed:      req.Completed,
		Exercises:      mapExerciseRequests(req.Exercises),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, MapWorkoutToResponse(workout))
}

// UpdateWorkout handles PATCH /workouts/:id with a partial-field merge.
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	var req UpdateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError(err))
		return
	}

	workout, err := h.workoutService.Update(c.Request.Context(), c.Param("id"), service.UpdateWorkoutInput{
		UserID:         req.UserID,
		Title:          req.Title,
		ExerciseType:   exerciseTypePtr(req.ExerciseType),
		Duration:       req.Duration,
		CaloriesBurned: req.CaloriesBurned,
		Intensity:      intensityPtr(req.Intensity),
		Notes:          req.Notes,
		WorkoutDate:    req.WorkoutDate,
		Completed:      req.Completed,
		Exercises:      mapExerciseRequests(req.Exercises),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, MapWorkoutToResponse(workout))
}

// DeleteWorkout handles DELETE /workouts/:id. Unconditional.
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	if err := h.workoutService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"deleted": true})
}

func mapExerciseRequests(reqs []ExerciseEntryRequest) []service.ExerciseEntryInput {
	if reqs == nil {
		return nil
	}
	inputs := make([]service.ExerciseEntryInput, len(reqs))
	for i, r := range reqs {
		inputs[i] = service.ExerciseEntryInput{
			Name:   r.Name,
			Sets:   r.Sets,
			Reps:   r.Reps,
			Weight: r.Weight,
		}
	}
	return inputs
}

func intensityPtr(s *string) *domain.Intensity {
	if s == nil {
		return nil
	}
	i := domain.Intensity(*s)
	return &i
}

func exerciseTypePtr(s *string) *domain.ExerciseType {
	if s == nil {
		return nil
	}
	t := domain.ExerciseType(*s)
	return &t
}

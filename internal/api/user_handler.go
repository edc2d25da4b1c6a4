package api

import (
	"net/http"
	"time"

	"fittrack/fitness-api/internal/domain"
	"fittrack/fitness-api/internal/query"
	"fittrack/fitness-api/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler holds the user service dependency.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// --- DTOs for API ---

// CreateUserRequest defines the expected JSON for creating a user.
type CreateUserRequest struct {
	Name          string   `json:"name" binding:"required,min=2,max=50"`
	Email         string   `json:"email" binding:"required,email"`
	Age           *int     `json:"age" binding:"omitempty,min=13,max=120"`
	Weight        *float64 `json:"weight" binding:"omitempty,min=20,max=500"`
	Height        *float64 `json:"height" binding:"omitempty,min=50,max=300"`
	FitnessGoal   *string  `json:"fitnessGoal" binding:"omitempty,oneof=weight_loss muscle_gain endurance flexibility general_fitness"`
	ActivityLevel *string  `json:"activityLevel" binding:"omitempty,oneof=sedentary lightly_active moderately_active very_active extra_active"`
	IsActive      *bool    `json:"isActive"`
}

// UpdateUserRequest is a partial update; omitted fields keep their stored
// values.
type UpdateUserRequest struct {
	Name          *string  `json:"name" binding:"omitempty,min=2,max=50"`
	Email         *string  `json:"email" binding:"omitempty,email"`
	Age           *int     `json:"age" binding:"omitempty,min=13,max=120"`
	Weight        *float64 `json:"weight" binding:"omitempty,min=20,max=500"`
	Height        *float64 `json:"height" binding:"omitempty,min=50,max=300"`
	FitnessGoal   *string  `json:"fitnessGoal" binding:"omitempty,oneof=weight_loss muscle_gain endurance flexibility general_fitness"`
	ActivityLevel *string  `json:"activityLevel" binding:"omitempty,oneof=sedentary lightly_active moderately_active very_active extra_active"`
	IsActive      *bool    `json:"isActive"`
}

// UserResponse is the DTO for returning a user, including the derived
// metrics recomputed on every read.
type UserResponse struct {
	ID                string               `json:"id"`
	Name              string               `json:"name"`
	Email             string               `json:"email"`
	Age               *int                 `json:"age,omitempty"`
	Weight            *float64             `json:"weight,omitempty"`
	Height            *float64             `json:"height,omitempty"`
	FitnessGoal       *domain.FitnessGoal  `json:"fitnessGoal,omitempty"`
	ActivityLevel     domain.ActivityLevel `json:"activityLevel"`
	IsActive          bool                 `json:"isActive"`
	ProfileCompletion int                  `json:"profileCompletion"`
	BMI               *float64             `json:"bmi"`
	BMICategory       *string              `json:"bmiCategory"`
	DailyCalorieNeeds *float64             `json:"dailyCalorieNeeds"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

// MapUserToResponse converts a domain.User to UserResponse, computing the
// derived metrics from the snapshot.
func MapUserToResponse(u *domain.User) UserResponse {
	if u == nil {
		return UserResponse{}
	}
	bmi := domain.BMI(u.Weight, u.Height)
	return UserResponse{
		ID:                u.ID.Hex(),
		Name:              u.Name,
		Email:             u.Email,
		Age:               u.Age,
		Weight:            u.Weight,
		Height:            u.Height,
		FitnessGoal:       u.FitnessGoal,
		ActivityLevel:     u.ActivityLevel,
		IsActive:          u.IsActive,
		ProfileCompletion: u.ProfileCompletion,
		BMI:               bmi,
		BMICategory:       domain.BMICategory(bmi),
		DailyCalorieNeeds: domain.DailyCalorieNeeds(u),
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

// MapUsersToResponse converts a slice of users.
func MapUsersToResponse(users []domain.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = MapUserToResponse(&users[i])
	}
	return responses
}

// --- Handler Methods ---

// ListUsers handles GET /users with filters, sort and pagination.
func (h *UserHandler) ListUsers(c *gin.Context) {
	q, err := query.ParseUserQuery(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	users, pagination, err := h.userService.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, MapUsersToResponse(users), pagination)
}

// GetUser handles GET /users/:id.
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, MapUserToResponse(user))
}

// CreateUser handles POST /users.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError(err))
		return
	}

	user, err := h.userService.Create(c.Request.Context(), service.CreateUserInput{
		Name:          req.Name,
		Email:         req.Email,
		Age:           req.Age,
		Weight:        req.Weight,
		Height:        req.Height,
		FitnessGoal:   fitnessGoalPtr(req.FitnessGoal),
		ActivityLevel: activityLevelPtr(req.ActivityLevel),
		IsActive:      req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, MapUserToResponse(user))
}

// UpdateUser handles PATCH /users/:id with a partial-field merge.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError(err))
		return
	}

	user, err := h.userService.Update(c.Request.Context(), c.Param("id"), service.UpdateUserInput{
		Name:          req.Name,
		Email:         req.Email,
		Age:           req.Age,
		Weight:        req.Weight,
		Height:        req.Height,
		FitnessGoal:   fitnessGoalPtr(req.FitnessGoal),
		ActivityLevel: activityLevelPtr(req.ActivityLevel),
		IsActive:      req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, MapUserToResponse(user))
}

// DeleteUser handles DELETE /users/:id. Refused with 409 while the user
// still owns workouts.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"deleted": true})
}

func fitnessGoalPtr(s *string) *domain.FitnessGoal {
	if s == nil {
		return nil
	}
	goal := domain.FitnessGoal(*s)
	return &goal
}

func activityLevelPtr(s *string) *domain.ActivityLevel {
	if s == nil {
		return nil
	}
	level := domain.ActivityLevel(*s)
	return &level
}

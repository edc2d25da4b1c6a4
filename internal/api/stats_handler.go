package api

import (
	"net/http"

	"fittrack/fitness-api/internal/service"

	"github.com/gin-gonic/gin"
)

// StatsHandler holds the statistics service dependency.
type StatsHandler struct {
	statsService service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetUserStats handles GET /users/:id/stats.
func (h *StatsHandler) GetUserStats(c *gin.Context) {
	stats, err := h.statsService.UserStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, stats)
}

// GetWorkoutStats handles GET /workouts/stats.
func (h *StatsHandler) GetWorkoutStats(c *gin.Context) {
	stats, err := h.statsService.WorkoutStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, stats)
}

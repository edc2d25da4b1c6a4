package api

import (
	"net/http"

	"fittrack/fitness-api/internal/service"

	"github.com/gin-gonic/gin"
)

// loginPath is the identity-provider entry point advertised in 401 bodies.
const loginPath = "/api/v1/auth/github/login"

// SetupRoutes wires every endpoint. Reads are public; writes require a
// session token issued after the OAuth handshake.
func SetupRoutes(
	router *gin.Engine,
	authService service.AuthService,
	userService service.UserService,
	workoutService service.WorkoutService,
	statsService service.StatsService,
) {
	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService)
	workoutHandler := NewWorkoutHandler(workoutService)
	statsHandler := NewStatsHandler(statsService)

	requireAuth := RequireAuth(authService)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.GET("/github/login", authHandler.Login)
			authGroup.GET("/github/callback", authHandler.Callback)
			authGroup.GET("/me", requireAuth, authHandler.Me)
		}

		userGroup := apiV1.Group("/users")
		{
			userGroup.GET("", userHandler.ListUsers)
			userGroup.GET("/:id", userHandler.GetUser)
			userGroup.GET("/:id/stats", statsHandler.GetUserStats)

			userGroup.POST("", requireAuth, userHandler.CreateUser)
			userGroup.PATCH("/:id", requireAuth, userHandler.UpdateUser)
			userGroup.DELETE("/:id", requireAuth, userHandler.DeleteUser)
		}

		workoutGroup := apiV1.Group("/workouts")
		{
			// Registered before /:id so "stats" is not taken as an id.
			workoutGroup.GET("/stats", statsHandler.GetWorkoutStats)

			workoutGroup.GET("", workoutHandler.ListWorkouts)
			workoutGroup.GET("/:id", workoutHandler.GetWorkout)

			workoutGroup.POST("", requireAuth, workoutHandler.CreateWorkout)
			workoutGroup.PATCH("/:id", requireAuth, workoutHandler.UpdateWorkout)
			workoutGroup.DELETE("/:id", requireAuth, workoutHandler.DeleteWorkout)
		}
	}
}

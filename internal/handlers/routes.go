package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todolist-api/internal/middleware"
)

// Handlers bundles every HTTP handler mounted by RegisterRoutes.
type Handlers struct {
	Auth    *AuthHandler
	Profile *ProfileHandler
	Task    *TaskHandler
}

// RegisterRoutes mounts the API on r. Session middleware must already be installed.
func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/signup", h.Auth.Signup)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/me", middleware.RequireAuth(), h.Auth.GetCurrentUser)
	}

	protected := api.Group("")
	protected.Use(middleware.RequireAuth())
	{
		protected.GET("/teams", h.Profile.ListTeams)

		protected.POST("/profile", h.Profile.CreateProfile)
		protected.GET("/profile", h.Profile.GetProfile)
		protected.PATCH("/profile", h.Profile.UpdateNames)

		protected.GET("/tasks", h.Task.ListTasks)
		protected.POST("/tasks", h.Task.CreateTask)
		protected.POST("/tasks/suggest", h.Task.SuggestTasks)

		task := protected.Group("/tasks/:id")
		task.Use(middleware.RequireTaskID())
		{
			task.GET("", h.Task.GetTask)
			task.PATCH("", h.Task.UpdateTask)
			task.DELETE("", h.Task.DeleteTask)
			task.POST("/complete", h.Task.CompleteTask)
			task.POST("/close", h.Task.CloseTask)
		}
	}
}

package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/taskhive-dev/taskhive/internal/handlers"
	"github.com/taskhive-dev/taskhive/internal/middleware"
	"github.com/taskhive-dev/taskhive/internal/types"
)

func NewRouter(logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/:project_id", middleware.AuthMiddleware(), handlers.ActivityFeed)
		api.GET("/audit", middleware.AuthMiddleware(), handlers.QueryAuditLog)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.POST("/logout", handlers.Logout)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
			auth.PATCH("/me", middleware.AuthMiddleware(), handlers.UpdateProfile)
			auth.DELETE("/me", middleware.AuthMiddleware(), handlers.DeactivateAccount)
		}

		teams := api.Group("/teams", middleware.AuthMiddleware())
		{
			teams.POST("", handlers.CreateTeam)
			teams.GET("", handlers.ListTeams)
			teams.GET("/:team_id", handlers.GetTeam)
			teams.PATCH("/:team_id", handlers.RenameTeam)
			teams.DELETE("/:team_id", handlers.DeleteTeam)

			teams.POST("/:team_id/members", handlers.AddTeamMember)
			teams.PATCH("/:team_id/members/:user_id", handlers.UpdateTeamMember)
			teams.DELETE("/:team_id/members/:user_id", handlers.RemoveTeamMember)
		}

		projects := api.Group("/projects", middleware.AuthMiddleware())
		{
			projects.POST("", handlers.CreateProject)
			projects.GET("", handlers.ListProjects)
			projects.GET("/:project_id", handlers.GetProject)
			projects.PATCH("/:project_id", handlers.UpdateProject)
			projects.DELETE("/:project_id", handlers.DeleteProject)

			projects.POST("/:project_id/teams/:team_id", handlers.AttachProjectTeam)
			projects.DELETE("/:project_id/teams/:team_id", handlers.DetachProjectTeam)

			projects.GET("/:project_id/dashboard", handlers.GetDashboard)

			projects.POST("/:project_id/tasks", handlers.CreateTask)
			projects.GET("/:project_id/tasks", handlers.ListTasks)
			projects.GET("/:project_id/tasks/:task_id", handlers.GetTask)
			projects.PATCH("/:project_id/tasks/:task_id", handlers.UpdateTask)
			projects.PUT("/:project_id/tasks/:task_id/status", handlers.UpdateTaskStatus)
			projects.PUT("/:project_id/tasks/:task_id/assignees", handlers.UpdateTaskAssignees)
			projects.DELETE("/:project_id/tasks/:task_id", handlers.DeleteTask)

			projects.POST("/:project_id/tasks/:task_id/comments", handlers.CreateComment)
			projects.GET("/:project_id/tasks/:task_id/comments", handlers.ListComments)
		}
	}

	return r
}

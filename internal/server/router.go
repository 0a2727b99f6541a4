package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hokkyo/cpadash-backend/internal/handlers"
	"github.com/hokkyo/cpadash-backend/internal/middleware"
)

type RouterConfig struct {
	CORSOrigins       []string
	RequestMiddleware *middleware.RequestMiddleware
	StudyTimeHandler  *handlers.StudyTimeHandler
	DashboardHandler  *handlers.DashboardHandler
	ProgressHandler   *handlers.ProgressHandler
	TodoHandler       *handlers.TodoHandler
	ProjectHandler    *handlers.ProjectHandler
	SettingsHandler   *handlers.SettingsHandler
	ReviewSetHandler  *handlers.ReviewSetHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cfg.RequestMiddleware.RequestID())
	router.Use(cfg.RequestMiddleware.RequestLog())

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Request-ID"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "CPA Dashboard API"})
	})

	api := router.Group("/api")
	{
		// Study time ledger
		api.POST("/study-time/sync", cfg.StudyTimeHandler.Sync)
		api.GET("/study-time/summary", cfg.StudyTimeHandler.Summary)

		// Dashboard
		api.GET("/dashboard/summary", cfg.DashboardHandler.Summary)
		api.GET("/summary", cfg.DashboardHandler.SubjectsSummary)

		// Study progress
		api.GET("/progress", cfg.ProgressHandler.List)
		api.GET("/progress/subject/:subject", cfg.ProgressHandler.ListBySubject)
		api.GET("/progress/:id", cfg.ProgressHandler.Get)
		api.POST("/progress", cfg.ProgressHandler.Create)
		api.PUT("/progress/:id", cfg.ProgressHandler.Update)
		api.DELETE("/progress/:id", cfg.ProgressHandler.Delete)

		// Todos
		api.GET("/todos", cfg.TodoHandler.List)
		api.GET("/todos/:id", cfg.TodoHandler.Get)
		api.POST("/todos", cfg.TodoHandler.Create)
		api.PUT("/todos/:id", cfg.TodoHandler.Update)
		api.DELETE("/todos/:id", cfg.TodoHandler.Delete)

		// Projects
		api.GET("/projects", cfg.ProjectHandler.List)
		api.GET("/projects/:id", cfg.ProjectHandler.Get)
		api.POST("/projects", cfg.ProjectHandler.Create)
		api.PUT("/projects/:id", cfg.ProjectHandler.Update)
		api.DELETE("/projects/:id", cfg.ProjectHandler.Delete)
		api.POST("/projects/:id/complete", cfg.ProjectHandler.Complete)

		// Settings
		api.GET("/settings", cfg.SettingsHandler.List)
		api.GET("/settings/:key", cfg.SettingsHandler.Get)
		api.POST("/settings", cfg.SettingsHandler.Upsert)
		api.PUT("/subjects/update-name", cfg.SettingsHandler.RenameSubject)

		// Review sets
		api.GET("/review-sets", cfg.ReviewSetHandler.List)
		api.GET("/review-sets/:id", cfg.ReviewSetHandler.Get)
		api.POST("/review-sets", cfg.ReviewSetHandler.Create)
		api.PUT("/review-sets/:id", cfg.ReviewSetHandler.UpdateName)
		api.DELETE("/review-sets/:id", cfg.ReviewSetHandler.Delete)
		api.POST("/review-sets/:id/items", cfg.ReviewSetHandler.AddItem)
		api.PUT("/review-sets/:id/items/:itemID", cfg.ReviewSetHandler.UpdateItem)
		api.DELETE("/review-sets/:id/items/:itemID", cfg.ReviewSetHandler.DeleteItem)
		api.POST("/review-sets/:id/generate", cfg.ReviewSetHandler.Generate)
	}

	return router
}

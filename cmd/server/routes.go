package main

import (
	"github.com/gin-gonic/gin"

	"github.com/kalviumcommunity/mentorhub/backend/internal/handlers"
	"github.com/kalviumcommunity/mentorhub/backend/internal/middleware"
	"github.com/kalviumcommunity/mentorhub/backend/internal/models"
	"github.com/kalviumcommunity/mentorhub/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(middleware.RequestID())
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for credential endpoints
	authLimiter := middleware.NewRateLimiter(5, 10)

	// Health check
	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.Me)

			// Projects
			projectHandler := handlers.NewProjectHandler(models.GetDB())
			protected.GET("/projects", projectHandler.List)
			protected.GET("/projects/:id", projectHandler.GetByID)
			protected.POST("/projects", projectHandler.Create)
			protected.PUT("/projects/:id", projectHandler.Update)
			protected.DELETE("/projects/:id", projectHandler.Delete)

			// Members
			memberHandler := handlers.NewMemberHandler(models.GetDB())
			protected.GET("/projects/:id/members", memberHandler.List)
			protected.POST("/projects/:id/members", memberHandler.Add)
			protected.DELETE("/projects/:id/members/:userId", memberHandler.Remove)

			// Tasks
			taskHandler := handlers.NewTaskHandler(models.GetDB())
			protected.GET("/projects/:id/tasks", taskHandler.List)
			protected.POST("/projects/:id/tasks", taskHandler.Create)
			protected.GET("/tasks/:id", taskHandler.GetByID)
			protected.PATCH("/tasks/:id", taskHandler.Update)
			protected.DELETE("/tasks/:id", taskHandler.Delete)

			// Peer feedback
			feedbackHandler := handlers.NewFeedbackHandler(models.GetDB())
			protected.GET("/projects/:id/feedback", feedbackHandler.List)
			protected.POST("/projects/:id/feedback", feedbackHandler.Submit)

			// Analytics
			analyticsHandler := handlers.NewAnalyticsHandler(models.GetDB())
			protected.GET("/projects/:id/analytics", analyticsHandler.ProjectStats)

			// Engagement logs (mentor only)
			engagementHandler := handlers.NewEngagementHandler(models.GetDB())
			protected.GET("/engagement-logs", middleware.MentorRequired(), engagementHandler.List)
		}
	}
}

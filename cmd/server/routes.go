package main

import (
	"github.com/gin-gonic/gin"
	"github.com/tasktrace/tasktrace/internal/handlers"
	"github.com/tasktrace/tasktrace/internal/middleware"
	"github.com/tasktrace/tasktrace/internal/models"
	"github.com/tasktrace/tasktrace/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	db := models.GetDB()

	// Throttles for credential endpoints and join attempts
	credentialThrottle := middleware.CredentialThrottle()
	joinThrottle := middleware.JoinThrottle()

	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", credentialThrottle.Middleware())
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/password", svc.authHandler.ChangePassword)

			// Users (self-service only)
			userHandler := handlers.NewUserHandler(db, svc.authService)
			protected.GET("/users/:userId", userHandler.Get)
			protected.PUT("/users/:userId", userHandler.Update)
			protected.DELETE("/users/:userId", userHandler.Delete)

			// Projects
			projectHandler := handlers.NewProjectHandler(db)
			protected.GET("/projects", projectHandler.List)
			protected.GET("/projects/:id", projectHandler.GetByID)
			protected.POST("/projects", projectHandler.Create)
			protected.PUT("/projects/:id", projectHandler.Update)
			protected.DELETE("/projects/:id", projectHandler.Delete)

			// Members
			memberHandler := handlers.NewMemberHandler(db)
			protected.GET("/projects/:id/members", memberHandler.List)
			protected.PUT("/projects/:id/members/:memberId/role", memberHandler.UpdateRole)
			protected.DELETE("/projects/:id/members/:memberId", memberHandler.Remove)
			protected.POST("/projects/:id/members/leave", memberHandler.Leave)

			// Invitation codes
			invitationHandler := handlers.NewInvitationHandler(db)
			protected.POST("/projects/:id/invitation", invitationHandler.Generate)
			protected.GET("/projects/:id/invitation", invitationHandler.Get)
			protected.POST("/projects/:id/invitation/redeem", joinThrottle.Middleware(), invitationHandler.Redeem)

			// Membership requests
			requestHandler := handlers.NewJoinRequestHandler(db)
			protected.POST("/projects/:id/requests", joinThrottle.Middleware(), requestHandler.Submit)
			protected.GET("/projects/:id/requests", requestHandler.List)
			protected.GET("/requests/mine", requestHandler.Mine)
			protected.POST("/requests/:requestId/approve", requestHandler.Approve)
			protected.POST("/requests/:requestId/reject", requestHandler.Reject)
			protected.DELETE("/requests/:requestId", requestHandler.Withdraw)

			// Tasks
			taskHandler := handlers.NewTaskHandler(db)
			protected.GET("/projects/:id/tasks", taskHandler.List)
			protected.GET("/projects/:id/tasks/:taskId", taskHandler.GetByID)
			protected.POST("/projects/:id/tasks", taskHandler.Create)
			protected.PUT("/projects/:id/tasks/:taskId", taskHandler.Update)
			protected.DELETE("/projects/:id/tasks/:taskId", taskHandler.Delete)

			// Analytics
			analyticsHandler := handlers.NewAnalyticsHandler(db)
			protected.GET("/projects/:id/stats", analyticsHandler.Stats)
			protected.GET("/analytics/countries", analyticsHandler.Countries)

			// Activity trail
			activityHandler := handlers.NewActivityHandler(db)
			protected.GET("/projects/:id/activity", activityHandler.List)
		}
	}
}

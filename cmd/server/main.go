package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/devhire/project-marketplace-api/internal/config"
	"github.com/devhire/project-marketplace-api/internal/database"
	"github.com/devhire/project-marketplace-api/internal/handlers"
	"github.com/devhire/project-marketplace-api/internal/middleware"
	"github.com/devhire/project-marketplace-api/internal/models"
	"github.com/devhire/project-marketplace-api/internal/repository"
	"github.com/devhire/project-marketplace-api/internal/services"
	"github.com/devhire/project-marketplace-api/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Artifact storage for solution uploads
	artifacts, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize artifact store: %v", err)
	}

	// Repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	// Optional AI drafting service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	// Services
	authService := services.NewAuthService(userRepo, cfg.BcryptCost)
	projectService := services.NewProjectService(projectRepo, taskRepo)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo, artifacts, aiService)
	statsService := services.NewStatsService(statsRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, cfg)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	paymentHandler := handlers.NewPaymentHandler(taskService)
	statsHandler := handlers.NewStatsHandler(statsService)

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Project Marketplace API is running",
		})
	})

	requireAuth := middleware.RequireAuth(cfg.JWTSecret)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public except /me)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		// User directory
		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("/developers", middleware.RequireRole(models.RoleBuyer, models.RoleAdmin), authHandler.ListDevelopers)
		}

		// Project routes (buyer only)
		projects := api.Group("/projects")
		projects.Use(requireAuth, middleware.RequireRole(models.RoleBuyer))
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/:id/tasks", projectHandler.ListProjectTasks)
			projects.DELETE("/:id", projectHandler.DeleteProject)
		}

		// Task lifecycle routes
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.POST("", middleware.RequireRole(models.RoleBuyer), taskHandler.CreateTask)
			tasks.POST("/generate", middleware.RequireRole(models.RoleBuyer), taskHandler.GenerateTasks)
			tasks.GET("/assigned", middleware.RequireRole(models.RoleDeveloper), taskHandler.ListAssignedTasks)
			tasks.GET("/all", middleware.RequireRole(models.RoleAdmin), taskHandler.ListAllTasks)
			tasks.PATCH("/:id", middleware.RequireRole(models.RoleDeveloper), taskHandler.UpdateTask)
			tasks.POST("/:id/submit", middleware.RequireRole(models.RoleDeveloper), taskHandler.SubmitTask)
			tasks.GET("/:id/download", middleware.RequireRole(models.RoleBuyer), taskHandler.DownloadSolution)
		}

		// Payment route (buyer only)
		payments := api.Group("/payments")
		payments.Use(requireAuth, middleware.RequireRole(models.RoleBuyer))
		{
			payments.POST("/:task_id", paymentHandler.PayTask)
		}

		// Admin statistics
		stats := api.Group("/stats")
		stats.Use(requireAuth, middleware.RequireRole(models.RoleAdmin))
		{
			stats.GET("", statsHandler.GetAdminStats)
		}
	}

	// Start server
	log.Printf("Server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

package main

import (
	"log"

	"github.com/eventops/taskflow/internal/config"
	"github.com/eventops/taskflow/internal/constants"
	"github.com/eventops/taskflow/internal/database"
	"github.com/eventops/taskflow/internal/handlers"
	"github.com/eventops/taskflow/internal/middleware"
	"github.com/eventops/taskflow/internal/notifier"
	"github.com/eventops/taskflow/internal/repository"
	"github.com/eventops/taskflow/internal/services"
	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
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
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,                        // Redis pool size
		"tcp",                     // network type
		redisAddr,                 // Redis address from config
		"",                        // username (empty for default user)
		"",                        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize repositories
	db := database.GetDB()
	taskRepo := repository.NewTaskRepository(db)
	workflowRepo := repository.NewWorkflowRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	operatorRepo := repository.NewOperatorRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	eventRepo := repository.NewEventRepository(db)

	// Initialize services
	authService := services.NewAuthService(operatorRepo, departmentRepo)
	templateService := services.NewTemplateService(templateRepo)
	taskService := services.NewTaskService(taskRepo, workflowRepo, eventRepo)
	workflowService := services.NewWorkflowService(workflowRepo, taskRepo, eventRepo, taskService)
	visibilityService := services.NewVisibilityService(workflowRepo)

	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	activationNotifier := notifier.NewLogNotifier()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	directoryHandler := handlers.NewDirectoryHandler(departmentRepo, eventRepo)
	templateHandler := handlers.NewTemplateHandler(templateService)
	taskHandler := handlers.NewTaskHandler(taskService, eventRepo, activationNotifier)
	workflowHandler := handlers.NewWorkflowHandler(workflowService, visibilityService, aiService, activationNotifier)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Taskflow API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentOperator)
		}

		// Directory routes (protected)
		directory := api.Group("")
		directory.Use(middleware.RequireAuth())
		{
			directory.POST("/departments", directoryHandler.CreateDepartment)
			directory.GET("/departments", directoryHandler.ListDepartments)
			directory.POST("/events", directoryHandler.CreateEvent)
		}

		// Template routes (protected)
		templates := api.Group("/templates")
		templates.Use(middleware.RequireAuth())
		{
			templates.POST("", templateHandler.CreateTemplate)
			templates.GET("", templateHandler.ListTemplates)
			templates.DELETE("/:id", templateHandler.DeleteTemplate)
			templates.POST("/:id/prerequisites", templateHandler.AddPrerequisite)
			templates.DELETE("/:id/prerequisites/:prerequisite_id", templateHandler.RemovePrerequisite)
			templates.GET("/:id/prerequisites/available", templateHandler.AvailablePrerequisites)
			templates.GET("/:id/prerequisites/closure", templateHandler.PrerequisiteClosure)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id/status", taskHandler.SetStatus)
		}

		// Workflow routes (protected)
		workflows := api.Group("/workflows")
		workflows.Use(middleware.RequireAuth())
		{
			workflows.POST("", workflowHandler.CreateWorkflow)
			workflows.GET("", workflowHandler.ListMyWorkflows)
			workflows.POST("/suggest", workflowHandler.SuggestTasks)
			workflows.GET("/:id", middleware.RequireWorkflowView(visibilityService), workflowHandler.GetWorkflow)
			workflows.DELETE("/:id", middleware.RequireWorkflowView(visibilityService), workflowHandler.DeleteWorkflow)
			workflows.POST("/:id/tasks", workflowHandler.AddTask)
			workflows.PATCH("/:id/tasks/:task_id", workflowHandler.UpdateTaskGate)
			workflows.DELETE("/:id/tasks/:task_id", workflowHandler.RemoveTask)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

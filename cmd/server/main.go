package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"

	"github.com/ayman-93/supabase-task-app/internal/config"
	"github.com/ayman-93/supabase-task-app/internal/constants"
	"github.com/ayman-93/supabase-task-app/internal/database"
	"github.com/ayman-93/supabase-task-app/internal/dataservice"
	"github.com/ayman-93/supabase-task-app/internal/events"
	"github.com/ayman-93/supabase-task-app/internal/handlers"
	"github.com/ayman-93/supabase-task-app/internal/middleware"
	"github.com/ayman-93/supabase-task-app/internal/repository"
	"github.com/ayman-93/supabase-task-app/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(db); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
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
	r.Use(sessions.Sessions(constants.SessionName, store))

	// Initialize repositories and the data service client. The client is the
	// single handle every consumer shares: REST mutations publish change
	// notifications on its bus, and live-view engines subscribe to them.
	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)
	bus := events.NewBus()
	data := dataservice.NewClient(taskRepo, bus)

	// Initialize services
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}
	authService := services.NewAuthService(userRepo, cfg.JWTSecret)
	taskService := services.NewTaskService(data, aiService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)
	liveHandler := handlers.NewLiveHandler(data)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Task app is running",
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
			auth.GET("/me", middleware.RequireAuth(authService), authHandler.GetCurrentUser)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth(authService))
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/suggest", taskHandler.SuggestTasks)
			tasks.GET("/live", liveHandler.Stream)
			tasks.GET("/:id", middleware.RequireTask(taskService), taskHandler.GetTask)
			tasks.PATCH("/:id", middleware.RequireTask(taskService), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireTask(taskService), taskHandler.DeleteTask)
			tasks.POST("/:id/toggle", middleware.RequireTask(taskService), taskHandler.ToggleTask)
		}
	}

	// Start server
	log.Printf("Server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

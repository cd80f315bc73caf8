package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"aquatrack/internal/config"
	"aquatrack/internal/database"
	_ "aquatrack/internal/docs"
	"aquatrack/internal/handlers"
	"aquatrack/internal/logger"
	"aquatrack/internal/mailer"
	"aquatrack/internal/middleware"
	"aquatrack/internal/oauth"
	"aquatrack/internal/services"
	"aquatrack/internal/storage"
	"aquatrack/internal/validator"
)

// @title           AquaTrack API
// @version         1.0
// @description     AquaTrack is a personal water-intake tracker: accounts, profiles, and per-day water logging with percentage-of-goal computation.

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Initialize services and collaborators
	db := dbManager.DB()
	userService := services.NewUserService(db)
	waterService := services.NewWaterService(db, userService)
	tokenManager := middleware.NewTokenManager(cfg)
	googleClient := oauth.NewGoogleClient(cfg)
	avatarStore, err := storage.NewAvatarStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to create avatar store: %w", err)
	}
	resetMailer := mailer.New(cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, tokenManager, googleClient, cfg)
	userHandler := handlers.NewUserHandler(userService, avatarStore, resetMailer)
	waterHandler := handlers.NewWaterHandler(waterService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware; credentials must be allowed for the refresh cookie.
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.FrontendURL)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// Public user routes
	users := api.Group("/users")
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.POST("/refresh", authHandler.Refresh)
	users.POST("/logout", authHandler.Logout)
	users.GET("/google", authHandler.GoogleAuth)
	users.GET("/google-redirect", authHandler.GoogleRedirect)
	users.GET("/count", userHandler.Count)
	users.PATCH("/:id/access", userHandler.UpdateAccess)
	users.POST("/send-reset-password", userHandler.SendResetPassword)
	users.POST("/reset-password", userHandler.ResetPassword)

	// Protected user routes
	usersAuth := users.Group("")
	usersAuth.Use(middleware.Auth(tokenManager))
	usersAuth.GET("/current", authHandler.Current)
	usersAuth.PATCH("/info", userHandler.UpdateInfo)
	usersAuth.PATCH("/photo", userHandler.UploadPhoto)

	// Water routes
	water := api.Group("/water")
	water.Use(middleware.Auth(tokenManager))
	water.POST("", waterHandler.Create)
	water.GET("", waterHandler.List)
	water.GET("/day", waterHandler.Day)
	water.GET("/:id", waterHandler.GetByID)
	water.PATCH("/:id", waterHandler.Update)
	water.DELETE("/:id", waterHandler.Delete)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})

	log.Infof("Starting AquaTrack backend server on port %s", cfg.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
	return router.Run(":" + cfg.Port)
}

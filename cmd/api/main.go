package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"domus/internal/config"
	"domus/internal/database"
	"domus/internal/handlers"
	"domus/internal/logger"
	"domus/internal/middleware"
	"domus/internal/services"
	"domus/internal/validator"

	_ "domus/internal/docs" // Import swagger docs
)

// @title           Domus API
// @version         1.0
// @description     Domus is a household budgeting application: families plan yearly budgets per category, import them from spreadsheets, and split each budget between members.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom binding validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	provisionPolicy := services.ProvisionPolicy{
		ReadBack: services.RetryPolicy{
			MaxAttempts: appConfig.ProvisionRetryAttempts,
			Backoff:     appConfig.ProvisionRetryBackoff,
		},
		TrustWriteOnStaleRead: true,
	}
	userService := services.NewUserService(db)
	activityService := services.NewActivityService(db)
	familyService := services.NewFamilyService(db, provisionPolicy)
	importService := services.NewImportService(db, familyService, activityService)
	budgetService := services.NewBudgetService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	excelHandler := handlers.NewExcelHandler(importService)
	budgetHandler := handlers.NewBudgetHandler(budgetService)
	familyHandler := handlers.NewFamilyHandler(familyService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
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

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Family routes
	protected.GET("/family", familyHandler.GetFamily)

	// Spreadsheet ingestion routes
	excel := protected.Group("/excel")
	excel.POST("/parse-budgets", excelHandler.ParseBudgets)
	excel.POST("/import-budgets", excelHandler.ImportBudgets)

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id/allocations", budgetHandler.GetBudgetAllocations)

	log.Infof("Starting Domus backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}

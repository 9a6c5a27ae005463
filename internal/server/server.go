// Package server assembles the pennywise API: services, handlers,
// middleware and routes on a gin engine.
package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"pennywise/internal/config"
	_ "pennywise/internal/docs" // swagger docs
	"pennywise/internal/handlers"
	"pennywise/internal/middleware"
	"pennywise/internal/services"
	"pennywise/internal/validator"
)

// Options overrides collaborators that talk to the outside world.
type Options struct {
	Google  services.GoogleIdentity
	Planner services.Planner
}

// New builds the router. Default feature flags are seeded on the way.
func New(cfg config.Server, db *gorm.DB, opts Options) (*gin.Engine, error) {
	validator.Register()

	if opts.Google == nil {
		opts.Google = services.NewGoogleIdentity(cfg.Google)
	}
	if opts.Planner == nil {
		opts.Planner = services.NewRulePlanner()
	}

	// Initialize services
	userService := services.NewUserService(db)
	budgetService := services.NewBudgetService(db)
	categoryService := services.NewCategoryService(db)
	expenseService := services.NewExpenseService(db)
	featureService := services.NewFeatureService(db)
	auditService := services.NewAuditService(db)

	if err := featureService.SeedDefaults(); err != nil {
		return nil, fmt.Errorf("seeding feature flags: %w", err)
	}

	tokens := middleware.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.ExpiresIn)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, opts.Google, tokens, auditService)
	userHandler := handlers.NewUserHandler(userService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	expenseHandler := handlers.NewExpenseHandler(expenseService, auditService)
	featureHandler := handlers.NewFeatureHandler(featureService)
	aiHandler := handlers.NewAIHandler(opts.Planner, auditService)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public routes
	api.POST("/register", authHandler.Register)
	api.POST("/mobile-login", authHandler.MobileLogin)
	api.POST("/auth/callback/google", authHandler.GoogleCallback)

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(tokens))

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/features", featureHandler.GetFeatures)
	protected.GET("/users/currency", userHandler.GetCurrency)
	protected.PUT("/users/currency", userHandler.UpdateCurrency)

	budgets := protected.Group("/budgets")
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.POST("/reset", budgetHandler.ResetBudgets)
	budgets.POST("/ai-create", aiHandler.CreateBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	categories := protected.Group("/categories")
	categories.GET("", categoryHandler.GetCategories)
	categories.POST("", categoryHandler.CreateCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	expenses := protected.Group("/expenses")
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	return router, nil
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Total-Count, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

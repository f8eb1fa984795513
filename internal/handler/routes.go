package handler

import (
	"github.com/dafibh/pocketledger/pocketledger-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Handlers groups every HTTP handler mounted by RegisterRoutes
type Handlers struct {
	Auth          *AuthHandler
	Profile       *ProfileHandler
	Category      *CategoryHandler
	Icon          *IconHandler
	Transaction   *TransactionHandler
	Budget        *BudgetHandler
	MonthlyReport *MonthlyReportHandler
	MonthlyView   *MonthlyViewHandler
	Month         *MonthHandler
	Calculator    *CalculatorHandler
	WebSocket     *WebSocketHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, h Handlers) {
	// API documentation
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/openapi.json", ServeOpenAPI3Spec)

	// WebSocket authenticates with the token query parameter
	e.GET("/ws", h.WebSocket.HandleWS)

	// API version 1
	api := e.Group("/api/v1")

	// Auth routes. The callback runs before the user row exists, so it only needs a valid token.
	auth := api.Group("/auth")
	auth.Use(authMiddleware.Authenticate())
	auth.POST("/callback", h.Auth.Callback)
	auth.GET("/me", h.Auth.Me, authMiddleware.ResolveUser())
	auth.POST("/logout", h.Auth.Logout, authMiddleware.ResolveUser())

	// Everything below acts on behalf of a registered user
	userMiddleware := []echo.MiddlewareFunc{
		authMiddleware.Authenticate(),
		authMiddleware.ResolveUser(),
		middleware.RateLimitMiddleware(rateLimiter),
	}

	// Profile routes
	profile := api.Group("/profile")
	profile.Use(userMiddleware...)
	profile.GET("", h.Profile.GetProfile)
	profile.PUT("", h.Profile.UpdateProfile)
	profile.DELETE("", h.Profile.DeleteAccount)

	// Category routes
	categories := api.Group("/categories")
	categories.Use(userMiddleware...)
	categories.POST("", h.Category.CreateCategory)
	categories.GET("", h.Category.GetCategories)
	categories.GET("/:id", h.Category.GetCategory)
	categories.PUT("/:id", h.Category.UpdateCategory)
	categories.DELETE("/:id", h.Category.DeleteCategory)
	categories.POST("/:id/icon", h.Icon.UploadIcon)
	categories.GET("/:id/icon", h.Icon.GetIcon)
	categories.DELETE("/:id/icon", h.Icon.DeleteIcon)

	// Transaction routes
	transactions := api.Group("/transactions")
	transactions.Use(userMiddleware...)
	transactions.POST("", h.Transaction.CreateTransaction)
	transactions.GET("", h.Transaction.GetTransactions)
	transactions.GET("/:id", h.Transaction.GetTransaction)
	transactions.PUT("/:id", h.Transaction.UpdateTransaction)
	transactions.DELETE("/:id", h.Transaction.DeleteTransaction)

	// Budget routes
	budgets := api.Group("/budgets")
	budgets.Use(userMiddleware...)
	budgets.POST("", h.Budget.CreateBudget)
	budgets.GET("", h.Budget.GetBudgets)
	budgets.GET("/:id", h.Budget.GetBudget)
	budgets.PUT("/:id", h.Budget.UpdateBudget)
	budgets.DELETE("/:id", h.Budget.DeleteBudget)
	budgets.POST("/:id/recalculate", h.Budget.RecalculateBudget)

	// Monthly report routes
	reports := api.Group("/reports")
	reports.Use(userMiddleware...)
	reports.POST("", h.MonthlyReport.CreateReport)
	reports.GET("", h.MonthlyReport.GetReports)
	reports.POST("/generate", h.MonthlyReport.GenerateReport)
	reports.GET("/:id", h.MonthlyReport.GetReport)
	reports.PUT("/:id", h.MonthlyReport.UpdateReport)
	reports.DELETE("/:id", h.MonthlyReport.DeleteReport)

	// Monthly view
	views := api.Group("/views")
	views.Use(userMiddleware...)
	views.GET("/monthly", h.MonthlyView.GetMonthlyView)

	// Month navigation
	months := api.Group("/months")
	months.Use(userMiddleware...)
	months.GET("/current", h.Month.GetCurrent)
	months.GET("/:year/:month/step", h.Month.Step)

	// Amount keypad
	calculator := api.Group("/calculator")
	calculator.Use(userMiddleware...)
	calculator.POST("/evaluate", h.Calculator.Evaluate)
}

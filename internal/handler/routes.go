package handler

import (
	"net/http"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/middleware"
	"github.com/labstack/echo/v4"
)

// Handlers groups the HTTP handlers registered under /api/v1
type Handlers struct {
	Reports      *ReportHandler
	Transactions *TransactionHandler
	Categories   *CategoryHandler
	Budgets      *BudgetHandler
	Exports      *ExportHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, tokenAuth *middleware.APITokenAuthMiddleware, rateLimiter *middleware.RateLimiter, h Handlers) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// API version 1
	api := e.Group("/api/v1")
	api.Use(tokenAuth.Authenticate())
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	api.GET("/periods/resolve", h.Reports.ResolvePeriod)
	api.GET("/stats", h.Transactions.GetStats)

	// Report routes
	reports := api.Group("/reports")
	reports.GET("/monthly", h.Reports.GetMonthlyReport)
	reports.GET("/yearly", h.Reports.GetYearlyReport)
	reports.GET("/category/:name", h.Reports.GetCategoryReport)
	reports.GET("/budget-status", h.Reports.GetBudgetStatusReport)
	reports.GET("/summary", h.Reports.GetSummary)

	// Transaction routes
	transactions := api.Group("/transactions")
	transactions.POST("", h.Transactions.CreateTransaction)
	transactions.GET("", h.Transactions.GetTransactions)
	transactions.GET("/search", h.Transactions.SearchTransactions)
	transactions.GET("/:id", h.Transactions.GetTransaction)
	transactions.PUT("/:id", h.Transactions.UpdateTransaction)
	transactions.DELETE("/:id", h.Transactions.DeleteTransaction)

	// Category routes
	categories := api.Group("/categories")
	categories.POST("", h.Categories.CreateCategory)
	categories.GET("", h.Categories.GetCategories)
	categories.PUT("/:name", h.Categories.UpdateCategory)
	categories.DELETE("/:name", h.Categories.DeleteCategory)

	// Budget routes
	budgets := api.Group("/budgets")
	budgets.PUT("", h.Budgets.SetBudget)
	budgets.GET("", h.Budgets.GetBudgets)
	budgets.GET("/evaluations", h.Reports.EvaluateBudgets)
	budgets.DELETE("/:cadence", h.Budgets.DeleteBudget)

	// Export routes
	api.POST("/exports", h.Exports.CreateExport)
}

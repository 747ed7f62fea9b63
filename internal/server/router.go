// Package server assembles the services, handlers and middleware of the
// HTTP API.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/VaclavOrsag/bakalarka-rozpocet/internal/docs" // Import swagger docs
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/handlers"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/middleware"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/services"
)

// NewRouter registers every route. Mutating routes require apiKey when it
// is non-empty.
func NewRouter(svc *services.Services, apiKey string) *gin.Engine {
	categoryHandler := handlers.NewCategoryHandler(svc.Categories)
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions)
	classificationHandler := handlers.NewClassificationHandler(svc.Resolver)
	budgetHandler := handlers.NewBudgetHandler(svc.Budgets)
	analysisHandler := handlers.NewAnalysisHandler(svc.Pivot, svc.Performance)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS())
	router.NoRoute(middleware.NotFound())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	guarded := middleware.APIKey(apiKey)

	categories := v1.Group("/categories")
	categories.GET("", categoryHandler.ListCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.GET("/:id/budget", budgetHandler.GetBudget)
	categories.GET("/:id/performance", analysisHandler.GetCategoryPerformance)
	categories.POST("", guarded, categoryHandler.CreateCategory)
	categories.DELETE("/:id", guarded, categoryHandler.DeleteCategory)
	categories.PUT("/:id/budget", guarded, budgetHandler.SetLeafBudget)

	transactions := v1.Group("/transactions")
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/total", transactionHandler.GetTotal)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.POST("", guarded, transactionHandler.AddTransaction)
	transactions.POST("/import", guarded, transactionHandler.ImportTransactions)
	transactions.PUT("/:id", guarded, transactionHandler.UpdateTransaction)
	transactions.PUT("/:id/category", guarded, classificationHandler.AssignTransaction)
	transactions.DELETE("/:id", guarded, transactionHandler.DeleteTransaction)
	transactions.DELETE("", guarded, transactionHandler.BulkClear)

	classification := v1.Group("/classification")
	classification.GET("/unassigned", classificationHandler.ListUnassignedKeys)
	classification.GET("/suggest-kind", classificationHandler.SuggestKind)
	classification.GET("/suggestions", classificationHandler.SuggestCategories)
	classification.POST("/assign", guarded, classificationHandler.AssignByName)
	classification.POST("/reapply", guarded, classificationHandler.ReapplyAll)
	classification.POST("/promote", guarded, classificationHandler.PromoteKey)

	budgets := v1.Group("/budgets")
	budgets.GET("/overview", budgetHandler.GetOverview)
	budgets.GET("/total", budgetHandler.GetTotal)
	budgets.GET("/completeness", budgetHandler.CheckCompleteness)

	v1.POST("/pivot", analysisHandler.Pivot)
	v1.GET("/performance", analysisHandler.ListPerformance)
	v1.GET("/performance/compare", analysisHandler.CompareMonth)

	return router
}

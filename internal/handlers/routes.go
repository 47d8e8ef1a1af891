package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/middleware"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/models"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/observability"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/repositories"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/services"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Pinger is a dependency the health endpoint can probe
type Pinger interface {
	Enabled() bool
	Ping(ctx context.Context) error
}

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	ReportService services.ReportService
	LedgerService services.LedgerService

	// Location reads calendar dates in report queries
	Location *time.Location

	// Database and Cache are probed by /health; both may be nil
	Database repositories.HealthChecker
	Cache    Pinger

	// Metrics is served on /metrics when set
	Metrics *observability.Metrics
}

// MiddlewareConfig holds the tunables of the global middleware chain
type MiddlewareConfig struct {
	Logger          *logrus.Logger
	RateLimitRPS    float64
	RateLimitBurst  int
	MaxBodyBytes    int64
	SlowRequestTime time.Duration
	Metrics         *observability.Metrics
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, config *RouterConfig) {
	reportHandler := NewReportHandler(config.ReportService, config.Location)
	ledgerHandler := NewLedgerHandler(config.LedgerService)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", healthHandler(config))

	if config.Metrics != nil {
		router.GET("/metrics", gin.WrapH(config.Metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	{
		reports := v1.Group("/reports")
		{
			reports.GET("/summary", reportHandler.GetSummary)
			reports.GET("/monthly", reportHandler.GetMonthlyTrend)
			reports.GET("/top-products", reportHandler.GetTopProducts)
			reports.GET("/top-categories", reportHandler.GetTopCategories)
			reports.GET("/top-customers", reportHandler.GetTopCustomers)
			reports.GET("/dashboard", reportHandler.GetDashboard)
		}

		sales := v1.Group("/sales")
		{
			sales.POST("", ledgerHandler.CreateSale)
			sales.DELETE("/:id", ledgerHandler.DeleteSale)
			sales.GET("/:id/valuation", reportHandler.GetSaleValuation)
		}

		expenses := v1.Group("/expenses")
		{
			expenses.POST("", ledgerHandler.CreateExpense)
			expenses.DELETE("/:id", ledgerHandler.DeleteExpense)
		}

		v1.POST("/products", ledgerHandler.CreateProduct)
		v1.POST("/customers", ledgerHandler.CreateCustomer)
	}
}

// SetupMiddleware configures global middleware
func SetupMiddleware(router *gin.Engine, config *MiddlewareConfig) {
	if config == nil {
		config = &MiddlewareConfig{}
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = 1 << 20
	}

	router.Use(gin.Recovery())
	router.Use(config.Metrics.Middleware())

	// Request ID and correlation ID
	router.Use(middleware.RequestID())
	router.Use(middleware.CorrelationID())

	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	router.Use(middleware.RequestSizeLimit(config.MaxBodyBytes))
	router.Use(middleware.ContentTypeValidation("application/json"))

	router.Use(middleware.RateLimiter(config.Logger, config.RateLimitRPS, config.RateLimitBurst))

	router.Use(middleware.StructuredLogger(config.Logger))
	router.Use(middleware.PerformanceMonitor(config.Logger, config.SlowRequestTime))
	router.Use(middleware.AuditLogger(config.Logger))

	router.Use(middleware.ErrorHandler(config.Logger))
}

// @Summary Health check
// @Description Database and report cache status. Returns 503 when the database is down.
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthCheck
// @Failure 503 {object} models.HealthCheck
// @Router /health [get]
func healthHandler(config *RouterConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		health := models.HealthCheck{
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
			Version:   Version,
			Services:  map[string]string{},
		}
		status := http.StatusOK

		if config.Database != nil {
			if err := config.Database.CheckHealth(ctx); err != nil {
				health.Status = "unhealthy"
				health.Services["database"] = "unhealthy"
				status = http.StatusServiceUnavailable
			} else {
				health.Services["database"] = "healthy"
			}
		}

		// Reports still work without Redis, so a down cache only degrades.
		switch {
		case config.Cache == nil || !config.Cache.Enabled():
			health.Services["cache"] = "disabled"
		case config.Cache.Ping(ctx) != nil:
			health.Services["cache"] = "unhealthy"
			if status == http.StatusOK {
				health.Status = "degraded"
			}
		default:
			health.Services["cache"] = "healthy"
		}

		c.JSON(status, health)
	}
}

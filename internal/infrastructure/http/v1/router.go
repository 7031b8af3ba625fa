// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"tokopos/internal/domain/backoffice"
	"tokopos/internal/domain/catalog"
	"tokopos/internal/domain/expense"
	"tokopos/internal/domain/extraction"
	"tokopos/internal/domain/ledger"
	"tokopos/internal/domain/reports"
	"tokopos/internal/infrastructure/cache"
	"tokopos/internal/infrastructure/http/v1/handlers"
	"tokopos/internal/infrastructure/http/v1/middleware"
	"tokopos/internal/infrastructure/storage/postgres"
	"tokopos/pkg/logger"
)

// RoleAdmin guards the danger zone: sale deletion, batch deletes,
// reconciliation, audit history.
const RoleAdmin = "admin"

// RouterConfig holds the wired services the router exposes.
type RouterConfig struct {
	Logger         *logger.Logger
	TokenValidator *middleware.TokenValidator

	Catalog   *catalog.Service
	Engine    *ledger.Engine
	Expenses  *expense.Service
	Reports   *reports.Service
	Office    *backoffice.Facade
	Extractor extraction.Extractor

	// ViewCache backs the cached read endpoints; nil falls back to the
	// no-op cache.
	ViewCache handlers.ViewCache

	// Pool and Audit are nil in memory store mode.
	Pool  *postgres.Pool
	Audit *postgres.AuditService
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if cfg.ViewCache == nil {
		cfg.ViewCache = cache.NoopViews{}
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.TokenValidator))
	{
		// Products
		products := handlers.NewProductsHandler(base, cfg.Catalog, cfg.Office, cfg.ViewCache)
		pg := api.Group("/products")
		{
			pg.GET("", products.List)
			pg.GET("/:id", products.Get)
			pg.POST("", products.Create)
			pg.PUT("/:id", products.Update)
			pg.DELETE("/:id", products.Delete)

			// Batch routes are POST-only subpaths so they never collide
			// with the :id parameter routes.
			pg.POST("/batch", products.BatchCreate)
			pg.POST("/batch/update", products.BatchUpdate)
			pg.POST("/batch/delete", middleware.RequireRole(RoleAdmin), products.BatchDelete)
		}

		// Sales
		sales := handlers.NewSalesHandler(base, cfg.Engine, cfg.Office)
		sg := api.Group("/sales")
		{
			sg.GET("", sales.List)
			sg.GET("/:id", sales.Get)
			sg.POST("", sales.Record)
			sg.DELETE("/:id", middleware.RequireRole(RoleAdmin), sales.Delete)
		}

		// Expenses
		expensesHandler := handlers.NewExpensesHandler(base, cfg.Expenses)
		eg := api.Group("/expenses")
		{
			eg.GET("", expensesHandler.List)
			eg.POST("", expensesHandler.Create)
			eg.DELETE("/:id", expensesHandler.Delete)
		}

		// Reports
		reportsHandler := handlers.NewReportsHandler(base, cfg.Reports, cfg.ViewCache)
		rg := api.Group("/reports")
		{
			rg.GET("/activity", reportsHandler.Activity)
			rg.GET("/summary", reportsHandler.Summary)
			rg.GET("/top-products", reportsHandler.TopProducts)
		}

		// Extraction
		extractionHandler := handlers.NewExtractionHandler(base, cfg.Extractor)
		api.POST("/extraction/products", extractionHandler.Extract)

		// Admin
		admin := handlers.NewAdminHandler(base, cfg.Office, cfg.Audit)
		ag := api.Group("/admin", middleware.RequireRole(RoleAdmin))
		{
			ag.POST("/reconcile/cost-prices", admin.SynchronizeCostPrices)
			ag.GET("/audit/:entity/:id", admin.EntityHistory)
		}
	}

	return router
}

// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"margem/internal/domain/catalog"
	"margem/internal/domain/importer"
	"margem/internal/domain/reports"
	"margem/internal/domain/sales"
	"margem/internal/infrastructure/http/v1/handlers"
	"margem/internal/infrastructure/http/v1/middleware"
	"margem/internal/infrastructure/storage/postgres"
	"margem/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *pgxpool.Pool

	// TxManager coordinates transactions across repositories
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// ProfitRates overrides the default report deduction rates
	ProfitRates *reports.ProfitRates
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	healthHandler.RegisterRoutes(router.Group("/health"))

	// Repositories share the TxManager so multi-step operations land
	// in one transaction.
	catalogRepo := postgres.NewCatalogRepo(cfg.TxManager)
	salesRepo := postgres.NewSalesRepo(cfg.TxManager)
	reportRepo := postgres.NewReportRepo(cfg.TxManager)

	batchStore, err := postgres.NewImportBatchStore(cfg.TxManager)
	if err != nil {
		return nil, err
	}

	rates := reports.DefaultProfitRates()
	if cfg.ProfitRates != nil {
		rates = *cfg.ProfitRates
	}

	catalogService := catalog.NewService(catalogRepo, cfg.TxManager)
	salesService := sales.NewService(salesRepo, catalogRepo, cfg.TxManager)
	importService := importer.NewService(catalogRepo, salesRepo, batchStore, cfg.TxManager)
	reportService := reports.NewService(reportRepo, rates)

	baseHandler := handlers.NewBaseHandler()

	// API v1
	apiV1 := router.Group("/api/v1")
	{
		handlers.NewCatalogHandler(baseHandler, catalogService).
			RegisterRoutes(apiV1.Group("/products"))
		handlers.NewSalesHandler(baseHandler, salesService).
			RegisterRoutes(apiV1.Group("/sales"))
		handlers.NewImportsHandler(baseHandler, importService, batchStore).
			RegisterRoutes(apiV1.Group("/imports"))
		handlers.NewReportsHandler(baseHandler, reportService).
			RegisterRoutes(apiV1.Group("/reports"))
	}

	return router, nil
}

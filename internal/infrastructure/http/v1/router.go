// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"tradebook/internal/domain/catalog"
	"tradebook/internal/domain/document"
	"tradebook/internal/domain/stock"
	"tradebook/internal/infrastructure/http/v1/handlers"
	"tradebook/internal/infrastructure/http/v1/middleware"
	"tradebook/internal/infrastructure/storage/postgres"
	"tradebook/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the shared connection pool (for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Processor handles document operations
	Processor *document.Processor

	// CatalogService handles catalog management
	CatalogService *catalog.Service

	// Ledger serves stock balance reads
	Ledger stock.Ledger
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth, no tenant required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1 - tenant resolution runs before auth so a request without a
	// resolvable tenant is rejected before any other processing.
	apiV1 := router.Group("/api/v1")
	apiV1.Use(middleware.Tenant())
	apiV1.Use(middleware.Auth(cfg.JWTValidator))

	base := handlers.NewBaseHandler()

	// Documents: one handler per kind, same semantics, opposite stock sign
	docs := apiV1.Group("/document")
	{
		purchaseHandler := handlers.NewDocumentHandler(base, cfg.Processor, document.KindPurchase)
		purchaseHandler.RegisterRoutes(docs.Group("/purchases"))

		saleHandler := handlers.NewDocumentHandler(base, cfg.Processor, document.KindSale)
		saleHandler.RegisterRoutes(docs.Group("/sales"))
	}

	// Catalogs
	catalogHandler := handlers.NewCatalogHandler(base, cfg.CatalogService)
	catalogHandler.RegisterRoutes(apiV1.Group("/catalog"))

	// Stock views
	stockHandler := handlers.NewStockHandler(base, cfg.Ledger, cfg.CatalogService)
	stockHandler.RegisterRoutes(apiV1.Group("/stock"))

	return router
}

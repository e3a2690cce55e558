// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	lcv "landedcost/internal/domain/documents/landed_cost_voucher"
	"landedcost/internal/infrastructure/http/v1/handlers"
	"landedcost/internal/infrastructure/http/v1/middleware"
	"landedcost/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation. Nil disables authentication
	// (local development only).
	JWTValidator middleware.JWTValidator

	// VoucherService is the landed cost voucher service
	VoucherService *lcv.Service

	// Pool is the database pool used by health checks. May be nil.
	Pool *pgxpool.Pool

	// Version reported by /health/info
	Version string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()

	// API v1
	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		if cfg.JWTValidator != nil {
			protected.Use(middleware.Auth(cfg.JWTValidator))
		}

		voucherHandler := handlers.NewVoucherHandler(base, cfg.VoucherService)
		voucherHandler.RegisterRoutes(protected.Group("/document/landed-cost-voucher"))
	}

	return router
}

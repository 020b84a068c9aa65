package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/senkronix/b2b-bridge/internal/infrastructure/config"
	"github.com/senkronix/b2b-bridge/internal/infrastructure/logger"
	"github.com/senkronix/b2b-bridge/internal/interfaces/http/handler"
	"github.com/senkronix/b2b-bridge/internal/interfaces/http/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Snapshot *handler.SnapshotHandler
	Orders   *handler.OrderHandler
	Health   *handler.HealthHandler
}

// New builds the portal's gin engine: health, snapshot read/write, and order
// endpoints. Snapshot writes require the publish keys and every order
// endpoint requires the operator key. Snapshot reads are open to the
// storefront.
func New(cfg *config.Config, handlers Handlers, log *zap.Logger) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))

	engine.GET("/healthz", handlers.Health.Check)

	api := engine.Group("/api")
	{
		api.GET("/products", handlers.Snapshot.GetCatalog)
		api.POST("/products",
			middleware.RequireAPIKey(cfg.Auth.CatalogKey),
			handlers.Snapshot.ReplaceCatalog)

		api.GET("/customer-balances", handlers.Snapshot.GetBalances)
		api.POST("/customer-balances",
			middleware.RequireAPIKey(cfg.Auth.LedgerKey),
			handlers.Snapshot.ReplaceBalances)

		orders := api.Group("/orders", middleware.RequireAPIKey(cfg.Auth.OperatorKey))
		orders.POST("", handlers.Orders.Create)
		orders.GET("", handlers.Orders.List)
		orders.GET("/:id", handlers.Orders.Get)
		orders.PUT("/:id/status", handlers.Orders.UpdateStatus)
	}

	return engine
}

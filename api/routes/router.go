// api/routes/router.go
package routes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	_ "boletamaster/docs"
	"boletamaster/internal/analytics"
	"boletamaster/internal/auth"
	"boletamaster/internal/events"
	"boletamaster/internal/marketplace"
	"boletamaster/internal/notifications"
	"boletamaster/internal/pricing"
	"boletamaster/internal/purchases"
	"boletamaster/internal/refunds"
	"boletamaster/internal/shared/config"
	"boletamaster/internal/shared/database"
	"boletamaster/internal/shared/middleware"
	"boletamaster/internal/users"
	"boletamaster/internal/venues"
	"boletamaster/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const serviceName = "boletamaster-backend"

// Router holds all route dependencies
type Router struct {
	config *config.Config
	db     *database.DB
	app    *components
}

// NewRouter composes the application and loads persisted fee settings
func NewRouter(cfg *config.Config, db *database.DB) (*Router, error) {
	app, err := buildComponents(cfg, db)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.fees.Load(ctx); err != nil {
		logger.GetDefault().Warn("Using default fee settings", slog.Any("error", err))
	}

	return &Router{
		config: cfg,
		db:     db,
		app:    app,
	}, nil
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	authMiddleware := middleware.JWTAuthWithConfig(r.config)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		auth.SetupAuthRoutes(api, auth.NewController(r.app.auth), authMiddleware)
		users.SetupWalletRoutes(api, users.NewController(r.app.users), authMiddleware)
		events.SetupEventRoutes(api, events.NewController(r.app.events), authMiddleware)
		venues.SetupVenueRoutes(api, venues.NewController(r.app.venues), authMiddleware)
		pricing.SetupFeeRoutes(api, pricing.NewController(r.app.fees), authMiddleware)
		purchases.SetupPurchaseRoutes(api, purchases.NewController(r.app.purchases), authMiddleware)
		marketplace.SetupMarketplaceRoutes(api, marketplace.NewController(r.app.marketplace), authMiddleware)
		refunds.SetupRefundRoutes(api, refunds.NewController(r.app.refunds), authMiddleware)
		analytics.SetupAnalyticsRoutes(api, analytics.NewController(r.app.analytics), authMiddleware)
		notifications.SetupActivityRoutes(api, notifications.NewController(r.app.activity), authMiddleware)
	}
}

// Start runs the background activity consumer when Kafka is enabled
func (r *Router) Start(ctx context.Context) {
	if r.app.consumer != nil {
		r.app.consumer.Start(ctx)
	}
}

// Close stops the consumer and flushes the publisher
func (r *Router) Close() error {
	if r.app.consumer != nil {
		if err := r.app.consumer.Stop(); err != nil {
			logger.GetDefault().Error("Error stopping activity consumer", slog.Any("error", err))
		}
	}
	return r.app.publisher.Close()
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   serviceName,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   serviceName,
			"storage":   storageName(r.db),
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if !r.config.IsProduction() {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}

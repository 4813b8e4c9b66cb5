package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boletamaster/api/routes"
	"boletamaster/internal/shared/config"
	"boletamaster/internal/shared/database"
	"boletamaster/internal/shared/middleware"
	"boletamaster/pkg/logger"
	"boletamaster/pkg/metrics"
	"boletamaster/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// @title						BoletaMaster API
// @version					1.0
// @description				Ticket marketplace: primary sales, resale listings, counteroffers and refunds.
// @BasePath					/api/v1
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)
	logger.SetDefault(logger.NewWithWriter(os.Stdout, cfg.LogLevel))
	appLogger = logger.GetDefault()

	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to initialize storage", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	var rateLimiter *ratelimit.RateLimiter
	switch {
	case !cfg.RateLimit.Enabled:
		appLogger.Info("Rate limiting disabled")
	case db.Redis == nil:
		appLogger.Warn("Rate limiting needs Redis; continuing without it")
	default:
		rateLimiter = ratelimit.NewRateLimiter(db.Redis, &ratelimit.Config{
			Enabled:             cfg.RateLimit.Enabled,
			WindowDuration:      cfg.RateLimit.WindowDuration,
			DefaultRequests:     cfg.RateLimit.DefaultRequests,
			PublicRequests:      cfg.RateLimit.PublicRequests,
			AuthRequests:        cfg.RateLimit.AuthRequests,
			MarketplaceRequests: cfg.RateLimit.MarketplaceRequests,
			AdminRequests:       cfg.RateLimit.AdminRequests,
			WhitelistedIPs:      cfg.RateLimit.WhitelistedIPs,
		})
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	}

	appRouter, err := routes.NewRouter(cfg, db)
	if err != nil {
		appLogger.Error("failed to compose application", slog.Any("error", err))
		os.Exit(1)
	}

	backgroundCtx, backgroundCancel := context.WithCancel(context.Background())
	defer backgroundCancel()
	appRouter.Start(backgroundCtx)
	defer func() {
		if err := appRouter.Close(); err != nil {
			appLogger.Error("Error closing event publisher", slog.Any("error", err))
		}
	}()

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        setupEngine(appRouter, rateLimiter),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("🚀 Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("swagger", fmt.Sprintf("http://localhost:%s/swagger/index.html", cfg.Port)),
			slog.String("version", Version),
			slog.String("commit", GitCommit),
			slog.String("built", BuildTime),
			slog.Bool("redis", db.Redis != nil),
			slog.Bool("rate_limiting", rateLimiter != nil),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

func setupEngine(appRouter *routes.Router, rateLimiter *ratelimit.RateLimiter) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()

	engine.Use(middleware.RequestID(), RequestLoggerMiddleware(appLogger), gin.Recovery())
	engine.Use(metrics.GinMiddleware())

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
	}

	appRouter.SetupRoutes(engine)
	return engine
}

func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.LogHTTPRequest(c, time.Since(start))
	}
}

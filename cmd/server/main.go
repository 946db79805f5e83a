package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/asapobra/quote-service/config"
	"github.com/asapobra/quote-service/internal/catalog"
	"github.com/asapobra/quote-service/internal/database"
	"github.com/asapobra/quote-service/internal/handlers"
	"github.com/asapobra/quote-service/internal/middleware"
	"github.com/asapobra/quote-service/internal/planner"
	"github.com/asapobra/quote-service/internal/quote"
	"github.com/asapobra/quote-service/internal/telemetry"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting quote service")

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:  cfg.Telemetry.Enabled,
		Endpoint: cfg.Telemetry.Endpoint,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}

	dbURL := config.GetDatabaseURL()
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL not set")
	}

	if err := database.Connect(
		ctx,
		dbURL,
		cfg.Database.MaxConnections,
		cfg.Database.MinConnections,
		cfg.Database.MaxConnLifetime,
		cfg.Database.MaxConnIdleTime,
	); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	logger.Info().Msg("Database connected")

	repo := catalog.NewPostgresCatalog(database.Pool())
	quoteSvc := quote.NewService(repo, quote.Options{
		DefaultRadiusKm:   cfg.Search.DefaultRadiusKm,
		DefaultStoreLimit: cfg.Search.DefaultStoreLimit,
		MaxStoreLimit:     cfg.Search.MaxStoreLimit,
	})

	handlers.InitCatalog(repo)
	handlers.InitQuoteService(quoteSvc)
	if cfg.Planner.Endpoint != "" {
		handlers.InitPlanner(planner.NewHTTPPlanner(planner.Config{
			Endpoint: cfg.Planner.Endpoint,
			APIKey:   cfg.Planner.APIKey,
			Model:    cfg.Planner.Model,
			Timeout:  cfg.Planner.Timeout,
		}))
	} else {
		logger.Warn().Msg("PLANNER_ENDPOINT not set, planner endpoints disabled")
	}

	if cfg.Logging.Level == "info" || cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	setupMiddleware(router, logger)

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	internal := router.Group("/internal")
	internal.Use(middleware.InternalAuthMiddleware())
	internal.Use(middleware.RateLimitMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.Burst,
	}))
	{
		internal.GET("/health", handlers.HealthCheck)
		internal.GET("/materials", handlers.ListMaterials)
		internal.GET("/categories", handlers.ListCategories)

		quotes := internal.Group("/quotes")
		{
			quotes.POST("", handlers.BuildQuote)
			quotes.POST("/export", handlers.ExportQuote)
		}

		stores := internal.Group("/stores")
		{
			stores.POST("", handlers.CreateStore)
			stores.GET("/:id/listings", handlers.ListInventory)
			stores.POST("/:id/listings", handlers.CreateListing)
		}

		listings := internal.Group("/listings")
		{
			listings.PUT("/:id/price", handlers.UpdateListingPrice)
			listings.DELETE("/:id", handlers.DeleteListing)
		}

		internal.POST("/planner/chat", handlers.PlanMaterials)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Telemetry shutdown failed")
	}

	logger.Info().Msg("Server exited")
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "quote-service").Logger()
	return &logger
}

func setupMiddleware(router *gin.Engine, logger *zerolog.Logger) {
	router.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		end := time.Now()
		latency := end.Sub(start)

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", c.Writer.Status()).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg("HTTP request")
	})
}

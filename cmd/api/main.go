package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/vidscribe/vidscribe/internal/cache"
	"github.com/vidscribe/vidscribe/internal/config"
	"github.com/vidscribe/vidscribe/internal/database"
	"github.com/vidscribe/vidscribe/internal/extractor"
	"github.com/vidscribe/vidscribe/internal/logging"
	"github.com/vidscribe/vidscribe/internal/metrics"
	"github.com/vidscribe/vidscribe/internal/middleware"
	"github.com/vidscribe/vidscribe/internal/pipeline"
	"github.com/vidscribe/vidscribe/internal/queue"
	"github.com/vidscribe/vidscribe/internal/storage"
	"github.com/vidscribe/vidscribe/internal/tracing"
	"github.com/vidscribe/vidscribe/internal/translator"
)

func main() {
	// Load .env if present; real deployments use the environment directly
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if cfg.Tracing.Enabled {
		_, closer, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.JaegerEndpoint)
		if err != nil {
			logger.Fatalf("Failed to initialize tracer: %v", err)
		}
		defer closer.Close()
	}

	middleware.SetJWTSecret(cfg.Auth.JWTSecret)

	db, err := database.New(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)

	store, err := storage.New(cfg.Storage, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	q, err := queue.New(cfg.Queue)
	if err != nil {
		logger.Fatalf("Failed to connect to queue: %v", err)
	}
	defer q.Close()

	ext, err := extractor.New(cfg.Extractor, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize extractor: %v", err)
	}

	tr, err := translator.New(cfg.Translator)
	if err != nil {
		logger.Fatalf("Failed to initialize translator: %v", err)
	}

	opts := pipeline.Options{StatusTTL: cfg.Redis.StatusTTL}
	statusCache, err := cache.NewCache(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		// Status reads fall through to the database without a cache
		logger.Warnf("Redis unavailable, running without status cache: %v", err)
	} else {
		defer statusCache.Close()
		opts.Cache = statusCache
	}

	svc := pipeline.New(repo, store, ext, tr, logger, opts)

	metricsServer := metrics.NewServer(cfg.Metrics.Port)
	go func() {
		logger.Infof("Starting metrics server on :%d", cfg.Metrics.Port)
		if err := metricsServer.Start(); err != nil {
			logger.Errorf("Metrics server error: %v", err)
		}
	}()

	go reportQueueDepth(q)

	api := &API{
		pipeline: svc,
		repo:     repo,
		queue:    q,
		cache:    statusCache,
	}

	router := setupRouter(api, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("Starting API server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}
	if err := metricsServer.Shutdown(ctx); err != nil {
		logger.Errorf("Metrics server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}

func setupRouter(api *API, logger *logging.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	limiter := middleware.NewRateLimiter(10, 20)
	go limiter.Cleanup(10*time.Minute, time.Hour)

	// Health check
	router.GET("/health", api.healthCheck)

	// API routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.OptionalIdentity())
	v1.Use(middleware.RateLimit(limiter))
	{
		// Tasks
		v1.POST("/tasks/extract", api.extractTask)
		v1.GET("/tasks/:id", api.getTaskStatus)
		// Listing is owner-scoped and needs a real identity
		v1.GET("/tasks", middleware.JWTAuth(), api.listTasks)

		// Translations
		v1.POST("/tasks/translate", api.translateTask)

		// Payments
		v1.POST("/payments/webhook", api.paymentWebhook)
	}

	return router
}

func reportQueueDepth(q *queue.Queue) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if depth, err := q.Depth(); err == nil {
			metrics.ResumeQueueDepth.Set(float64(depth))
		}
	}
}

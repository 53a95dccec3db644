package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vidscribe/vidscribe/internal/cache"
	"github.com/vidscribe/vidscribe/internal/config"
	"github.com/vidscribe/vidscribe/internal/database"
	"github.com/vidscribe/vidscribe/internal/extractor"
	"github.com/vidscribe/vidscribe/internal/logging"
	"github.com/vidscribe/vidscribe/internal/pipeline"
	"github.com/vidscribe/vidscribe/internal/queue"
	"github.com/vidscribe/vidscribe/internal/storage"
	"github.com/vidscribe/vidscribe/internal/translator"
)

func main() {
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
		logger.Warnf("Redis unavailable, running without status cache: %v", err)
	} else {
		defer statusCache.Close()
		opts.Cache = statusCache
	}

	svc := pipeline.New(repo, store, ext, tr, logger, opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutting down worker gracefully...")
		cancel()
	}()

	resumeHandler := func(msg *queue.ResumeMessage) error {
		logger.WithTaskID(msg.TaskID).Info("Resuming task")

		if err := svc.Resume(ctx, msg.TaskID); err != nil {
			logger.WithTaskID(msg.TaskID).ErrorWithErr("Failed to resume task", err)
			return err
		}

		return nil
	}

	logger.Info("Worker started, waiting for resume messages...")
	if err := q.ConsumeResumes(ctx, resumeHandler); err != nil {
		logger.Fatalf("Failed to consume resume messages: %v", err)
	}

	<-ctx.Done()
	logger.Info("Worker stopped")
}

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"finsight/internal/amqp"
	"finsight/internal/categorize"
	"finsight/internal/config"
	applog "finsight/internal/log"
	"finsight/internal/rules"
	"finsight/internal/storage"
	"finsight/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.Config{Component: applog.ComponentWorker})
	applog.SetDefault(logger)

	logger.Info("Starting finsight-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	table, err := rules.Load(cfg.RulesPath)
	if err != nil {
		logger.Error("Failed to load rule table", "error", err, "path", cfg.RulesPath)
		os.Exit(1)
	}

	var classifier categorize.Classifier
	if cfg.GeminiAPIKey != "" {
		gc, err := categorize.NewGeminiClassifier(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, rules.AllLabels)
		if err != nil {
			logger.Error("Failed to initialize Gemini classifier", "error", err)
			os.Exit(1)
		}
		classifier = gc
		logger.Info("Remote model enabled", "model", cfg.GeminiModel)
	} else {
		logger.Info("Remote model disabled - no GEMINI_API_KEY provided")
	}

	categorizer := categorize.New(classifier, table, categorize.Options{
		RemoteTimeout: cfg.RemoteTimeout,
		RemoteRetries: cfg.RemoteRetries,
	})

	sqliteRepo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer sqliteRepo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	w := worker.NewCategorizeWorker(sqliteRepo, categorizer, cfg.CategorizeBatchSize)

	// Drain any backlog left from downtime before consuming.
	logger.Info("Performing startup pending check...")
	if err := w.StartupCheck(ctx); err != nil {
		logger.Error("Startup pending check failed", "error", err)
		// Don't exit - continue with normal operation
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeCategorizeJobs(gctx, func(msg *amqp.CategorizeJobMessage) error {
			return w.HandleJob(gctx, msg)
		})
	})

	// Periodic sweep for rows whose job message was lost.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := w.SweepPending(gctx); err != nil {
					logger.Error("Periodic sweep failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker shutdown complete")
}

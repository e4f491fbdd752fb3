package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finsight/internal/amqp"
	"finsight/internal/categorize"
	"finsight/internal/config"
	apphttp "finsight/internal/http"
	"finsight/internal/insights"
	applog "finsight/internal/log"
	"finsight/internal/rules"
	"finsight/internal/services"
	"finsight/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Rule table is loaded once and immutable afterwards.
	table, err := rules.Load(cfg.RulesPath)
	if err != nil {
		logger.Error("Failed to load rule table", "error", err, "path", cfg.RulesPath)
		os.Exit(1)
	}
	logger.Info("Rule table loaded", "rules", table.Len(), "labels", len(table.Labels()))

	// Remote classification is optional; without a key the categorizer
	// runs on rules alone.
	var classifier categorize.Classifier
	var rephraser insights.Rephraser
	if cfg.GeminiAPIKey != "" {
		gc, err := categorize.NewGeminiClassifier(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, rules.AllLabels)
		if err != nil {
			logger.Error("Failed to initialize Gemini classifier", "error", err)
			os.Exit(1)
		}
		classifier = gc

		gr, err := insights.NewGeminiRephraser(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("Failed to initialize Gemini rephraser", "error", err)
			os.Exit(1)
		}
		rephraser = gr
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

	// AMQP is optional: without it, imports rely on the worker's sweep.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without it", "error", err)
			amqpClient = nil
		}
	}

	txService := services.NewTransactionService(sqliteRepo, categorizer, amqpClient, cfg.CategorizeBatchSize)
	defer txService.Close()

	insightGen := insights.NewGenerator(rephraser, cfg.RemoteTimeout)

	srv := apphttp.NewServer(":"+cfg.Port, txService, insightGen)

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting finsight server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"sentiment-api/internal/config"
	"sentiment-api/internal/handler"
	"sentiment-api/internal/metrics"
	"sentiment-api/internal/oracle"
	"sentiment-api/internal/repository"
	"sentiment-api/internal/server"
	"sentiment-api/internal/service"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err) // Should not happen in development
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	// Load configuration
	cfgPath := "configs/config.yml"
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Database connection
	db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	repository.MigrateDB(db, logger)

	// Initialize repositories
	commentRepo := repository.NewCommentRepository(db, logger)
	predictionRepo := repository.NewPredictionRepository(db, logger)

	// Initialize classification service client
	oracleClient := oracle.NewClient(cfg.Oracle.URL, time.Duration(cfg.Oracle.TimeoutSeconds)*time.Second)

	// Initialize metrics
	metric, err := metrics.New()
	if err != nil {
		logger.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	// Initialize sentiment service
	sentimentService := service.NewSentimentService(
		oracleClient,
		commentRepo,
		predictionRepo,
		metric,
		logger,
		cfg.Batch.TextColumn,
		time.Duration(cfg.Stats.CacheTTLSeconds)*time.Second,
	)

	sentimentHandler := handler.NewSentimentHandler(sentimentService, logger)

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize and run the server
	srv := server.NewServer(sentimentHandler, logger)
	if err := srv.Run(ctx, cfg.Server.Port); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}

	logger.Info("Application stopped.")
}

package main

import (
	"context"
	"log"
	"os"

	"finsightai/internal/ingest"
	"finsightai/internal/repository"
	"finsightai/pkg/config"
	"finsightai/pkg/embedding"
	"finsightai/pkg/logger"
	"finsightai/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()

	// The store being unreachable is the one fatal failure: nothing can
	// be ingested without it.
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	securityRepo := repository.NewSecurityRepository(db, appLogger)
	chunkRepo := repository.NewChunkRepository(db, appLogger)

	resolver, err := securityRepo.TickerMap(ctx)
	if err != nil {
		appLogger.Fatal("Failed to load securities lookup table", zap.Error(err))
	}
	if len(resolver) == 0 {
		appLogger.Warn("No securities found in the database, nothing to ingest")
		return
	}

	chunker, err := ingest.NewChunker(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	if err != nil {
		appLogger.Fatal("Invalid chunking configuration", zap.Error(err))
	}

	orchestrator := ingest.NewOrchestrator(
		ingest.NewParser(appLogger),
		chunker,
		embedding.NewClient(cfg.Embedding),
		chunkRepo,
		resolver,
		cfg.Ingest,
		appLogger,
	)

	report, err := orchestrator.Run(ctx)
	if err != nil {
		appLogger.Fatal("Ingestion run failed", zap.Error(err))
	}

	appLogger.Info("Ingestion summary",
		zap.Int("processed", report.Processed),
		zap.Int("skipped", report.Skipped),
		zap.Int("quarantined", report.Quarantined),
	)

	if report.Quarantined > 0 {
		os.Exit(1)
	}
}

package main

import (
	"context"
	"log"

	"finsightai/internal/marketdata"
	"finsightai/internal/repository"
	"finsightai/internal/service"
	"finsightai/pkg/config"
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

	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	securityRepo := repository.NewSecurityRepository(db, appLogger)
	statementRepo := repository.NewStatementRepository(db, appLogger)

	securities, err := securityRepo.TickerMap(ctx)
	if err != nil {
		appLogger.Fatal("Failed to load securities lookup table", zap.Error(err))
	}
	if len(securities) == 0 {
		appLogger.Warn("No securities found in the database, nothing to update")
		return
	}

	statementService := service.NewStatementService(
		marketdata.NewClient(cfg.MarketData, appLogger),
		statementRepo,
		appLogger,
	)

	written := statementService.UpdateStatements(ctx, securities)

	appLogger.Info("Statements update summary",
		zap.Int("tickers", len(securities)),
		zap.Int("rows", written),
	)
}

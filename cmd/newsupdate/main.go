package main

import (
	"context"
	"log"

	"finsightai/internal/news"
	"finsightai/internal/repository"
	"finsightai/internal/service"
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

	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	securityRepo := repository.NewSecurityRepository(db, appLogger)
	articleRepo := repository.NewArticleRepository(db, appLogger)

	resolver, err := securityRepo.TickerMap(ctx)
	if err != nil {
		appLogger.Fatal("Failed to load securities lookup table", zap.Error(err))
	}
	if len(resolver) == 0 {
		appLogger.Warn("No securities found in the database, nothing to update")
		return
	}

	tickers := make([]string, 0, len(resolver))
	for ticker := range resolver {
		tickers = append(tickers, ticker)
	}

	newsService := service.NewNewsService(
		articleRepo,
		securityRepo,
		embedding.NewClient(cfg.Embedding),
		appLogger,
	)

	inserted, err := newsService.UpdateKnowledgeBase(ctx, tickers, news.NewFetcher(cfg.News, appLogger))
	if err != nil {
		appLogger.Fatal("News update run failed", zap.Error(err))
	}

	appLogger.Info("News update summary",
		zap.Int("tickers", len(tickers)),
		zap.Int("inserted", inserted),
	)
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"finsightai/internal/api"
	"finsightai/internal/api/handlers"
	"finsightai/internal/repository"
	"finsightai/internal/service"
	"finsightai/pkg/auth"
	"finsightai/pkg/config"
	"finsightai/pkg/embedding"
	"finsightai/pkg/logger"
	"finsightai/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
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
	chunkRepo := repository.NewChunkRepository(db, appLogger)
	articleRepo := repository.NewArticleRepository(db, appLogger)

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration)

	embedder := embedding.NewClient(cfg.Embedding)

	llmService, err := service.NewLLMService(&cfg.GigaChat, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
	}
	defer llmService.Close()

	retrievalService := service.NewRetrievalService(chunkRepo, llmService, embedder, &cfg.RAG, appLogger)
	insightService := service.NewInsightService(securityRepo, articleRepo, retrievalService, llmService, appLogger)

	insightHandler := handlers.NewInsightHandler(insightService, cfg.Ingest.TickerSuffix, appLogger)

	app := api.SetupRouter(insightHandler, jwtManager, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}

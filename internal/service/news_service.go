package service

import (
	"context"
	"time"

	"finsightai/internal/models"
	"finsightai/pkg/embedding"

	"go.uber.org/zap"
)

// FetchedArticle is what an external news scraper hands over.
type FetchedArticle struct {
	Title       string
	URL         string
	PublishedAt *time.Time
	Content     string
}

// ArticleFetcher is the scraper boundary; implementations live outside
// this module.
type ArticleFetcher interface {
	FetchArticles(ctx context.Context, ticker string) ([]FetchedArticle, error)
}

// ArticleStore is the persistence slice the news updater needs.
type ArticleStore interface {
	Upsert(ctx context.Context, article *models.NewsArticle) (bool, error)
}

// NewsService keeps the news side of the knowledge base current: it
// embeds scraped article titles and upserts them keyed by URL.
type NewsService struct {
	articleRepo  ArticleStore
	securityRepo SecurityGetter
	embedder     embedding.Client
	logger       *zap.Logger
}

func NewNewsService(
	articleRepo ArticleStore,
	securityRepo SecurityGetter,
	embedder embedding.Client,
	logger *zap.Logger,
) *NewsService {
	return &NewsService{
		articleRepo:  articleRepo,
		securityRepo: securityRepo,
		embedder:     embedder,
		logger:       logger,
	}
}

// UpdateKnowledgeBase fetches and stores news for each ticker. Failures
// are contained to their article or ticker; the batch always completes.
func (s *NewsService) UpdateKnowledgeBase(ctx context.Context, tickers []string, fetcher ArticleFetcher) (int, error) {
	totalInserted := 0

	for _, ticker := range tickers {
		security, err := s.securityRepo.GetByTicker(ctx, ticker)
		if err != nil {
			s.logger.Warn("Skipping ticker without security record", zap.String("ticker", ticker), zap.Error(err))
			continue
		}

		articles, err := fetcher.FetchArticles(ctx, ticker)
		if err != nil {
			s.logger.Warn("Failed to fetch news", zap.String("ticker", ticker), zap.Error(err))
			continue
		}

		inserted := 0
		for _, article := range articles {
			vector, err := s.embedder.CreateEmbedding(ctx, article.Title)
			if err != nil {
				s.logger.Warn("Skipping article after embedding failure",
					zap.String("title", article.Title),
					zap.Error(err),
				)
				continue
			}

			ok, err := s.articleRepo.Upsert(ctx, models.NewNewsArticle(
				security.ID, article.Title, article.URL, article.PublishedAt, article.Content, vector,
			))
			if err != nil {
				s.logger.Error("Failed to store article", zap.String("url", article.URL), zap.Error(err))
				continue
			}
			if ok {
				inserted++
			}
		}

		totalInserted += inserted
		s.logger.Info("Updated news for ticker",
			zap.String("ticker", ticker),
			zap.Int("fetched", len(articles)),
			zap.Int("inserted", inserted),
		)
	}

	return totalInserted, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"finsightai/internal/models"
	"finsightai/pkg/config"
	"finsightai/pkg/embedding"

	"go.uber.org/zap"
)

// ChunkSearcher is the retrieval slice of the persistence gateway.
type ChunkSearcher interface {
	Search(ctx context.Context, q *models.RetrievalQuery) ([]*models.RetrievedChunk, error)
}

// FilterExtractor classifies a question and pulls metadata filters from it.
type FilterExtractor interface {
	ExtractQueryFilters(ctx context.Context, question string) models.QueryFilters
}

// RetrievalService builds the metadata predicate and vector ranking for
// a question and returns the most relevant chunks.
type RetrievalService struct {
	searcher  ChunkSearcher
	extractor FilterExtractor
	embedder  embedding.Client
	cfg       *config.RAGConfig
	logger    *zap.Logger
}

func NewRetrievalService(
	searcher ChunkSearcher,
	extractor FilterExtractor,
	embedder embedding.Client,
	cfg *config.RAGConfig,
	logger *zap.Logger,
) *RetrievalService {
	return &RetrievalService{
		searcher:  searcher,
		extractor: extractor,
		embedder:  embedder,
		cfg:       cfg,
		logger:    logger,
	}
}

// Retrieve runs the two-stage policy: LLM filter extraction, then the
// filtered nearest-neighbor search. A summary question pulls more chunks
// than a narrow factual one.
func (s *RetrievalService) Retrieve(ctx context.Context, securityID int64, question string) ([]*models.RetrievedChunk, models.QueryFilters, error) {
	filters := s.extractor.ExtractQueryFilters(ctx, question)

	s.logger.Info("Extracted query filters",
		zap.String("intent", string(filters.Intent)),
		zap.String("document_type", string(filters.DocumentType)),
		zap.Int("year", filters.Year),
		zap.Bool("latest", filters.Latest),
	)

	queryEmbedding, err := s.embedder.CreateEmbedding(ctx, question)
	if err != nil {
		return nil, filters, fmt.Errorf("failed to embed question: %w", err)
	}

	query := &models.RetrievalQuery{
		SecurityID: securityID,
		Filters:    filters,
		Embedding:  queryEmbedding,
		Limit:      s.cfg.FactChunks,
	}
	if filters.Intent == models.IntentDetailedSummary {
		query.Limit = s.cfg.SummaryChunks
	}
	if filters.Year == 0 && !filters.Latest {
		cutoff := time.Now().Add(-s.cfg.RecencyWindow)
		query.RecencyCutoff = &cutoff
	}

	chunks, err := s.searcher.Search(ctx, query)
	if err != nil {
		return nil, filters, fmt.Errorf("failed to search chunks: %w", err)
	}

	s.logger.Info("Retrieved chunks",
		zap.Int64("security_id", securityID),
		zap.Int("count", len(chunks)),
	)

	return chunks, filters, nil
}

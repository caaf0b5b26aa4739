package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"finsightai/internal/models"
	"finsightai/pkg/config"
)

type stubSearcher struct {
	lastQuery *models.RetrievalQuery
	chunks    []*models.RetrievedChunk
	err       error
}

func (s *stubSearcher) Search(_ context.Context, q *models.RetrievalQuery) ([]*models.RetrievedChunk, error) {
	s.lastQuery = q
	return s.chunks, s.err
}

type stubExtractor struct {
	filters models.QueryFilters
}

func (s *stubExtractor) ExtractQueryFilters(_ context.Context, _ string) models.QueryFilters {
	return s.filters
}

type stubQueryEmbedder struct {
	err error
}

func (s *stubQueryEmbedder) CreateEmbedding(_ context.Context, _ string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []float32{1, 0, 0}, nil
}

func newTestRetrievalService(searcher *stubSearcher, extractor *stubExtractor, embedder *stubQueryEmbedder) *RetrievalService {
	cfg := &config.RAGConfig{
		RecencyWindow: 730 * 24 * time.Hour,
		FactChunks:    5,
		SummaryChunks: 20,
	}
	return NewRetrievalService(searcher, extractor, embedder, cfg, zap.NewNop())
}

func TestRetrievalService_Retrieve_FactQuery(t *testing.T) {
	searcher := &stubSearcher{chunks: []*models.RetrievedChunk{{ChunkText: "net profit was 42 crore"}}}
	extractor := &stubExtractor{filters: models.QueryFilters{Intent: models.IntentSpecificFact}}
	svc := newTestRetrievalService(searcher, extractor, &stubQueryEmbedder{})

	chunks, filters, err := svc.Retrieve(context.Background(), 7, "what was the net profit?")
	require.NoError(t, err)

	assert.Len(t, chunks, 1)
	assert.Equal(t, models.IntentSpecificFact, filters.Intent)

	q := searcher.lastQuery
	require.NotNil(t, q)
	assert.Equal(t, int64(7), q.SecurityID)
	assert.Equal(t, 5, q.Limit)
	assert.Equal(t, []float32{1, 0, 0}, q.Embedding)

	// No explicit year means the recency window applies.
	require.NotNil(t, q.RecencyCutoff)
	expected := time.Now().Add(-730 * 24 * time.Hour)
	assert.WithinDuration(t, expected, *q.RecencyCutoff, time.Minute)
}

func TestRetrievalService_Retrieve_SummaryQueryUsesLargerLimit(t *testing.T) {
	searcher := &stubSearcher{}
	extractor := &stubExtractor{filters: models.QueryFilters{Intent: models.IntentDetailedSummary}}
	svc := newTestRetrievalService(searcher, extractor, &stubQueryEmbedder{})

	_, _, err := svc.Retrieve(context.Background(), 7, "summarize the annual report")
	require.NoError(t, err)

	assert.Equal(t, 20, searcher.lastQuery.Limit)
}

func TestRetrievalService_Retrieve_ExplicitYearDisablesRecencyCutoff(t *testing.T) {
	searcher := &stubSearcher{}
	extractor := &stubExtractor{filters: models.QueryFilters{
		Intent: models.IntentSpecificFact,
		Year:   2021,
	}}
	svc := newTestRetrievalService(searcher, extractor, &stubQueryEmbedder{})

	_, _, err := svc.Retrieve(context.Background(), 7, "revenue in 2021?")
	require.NoError(t, err)

	assert.Nil(t, searcher.lastQuery.RecencyCutoff)
	assert.Equal(t, 2021, searcher.lastQuery.Filters.Year)
}

func TestRetrievalService_Retrieve_LatestDisablesRecencyCutoff(t *testing.T) {
	searcher := &stubSearcher{}
	extractor := &stubExtractor{filters: models.QueryFilters{
		Intent: models.IntentSpecificFact,
		Latest: true,
	}}
	svc := newTestRetrievalService(searcher, extractor, &stubQueryEmbedder{})

	_, _, err := svc.Retrieve(context.Background(), 7, "latest credit rating?")
	require.NoError(t, err)

	assert.Nil(t, searcher.lastQuery.RecencyCutoff)
	assert.True(t, searcher.lastQuery.Filters.Latest)
}

func TestRetrievalService_Retrieve_EmbeddingFailure(t *testing.T) {
	searcher := &stubSearcher{}
	extractor := &stubExtractor{filters: models.QueryFilters{Intent: models.IntentSpecificFact}}
	svc := newTestRetrievalService(searcher, extractor, &stubQueryEmbedder{err: errors.New("backend down")})

	_, _, err := svc.Retrieve(context.Background(), 7, "what was the net profit?")
	assert.Error(t, err)
	assert.Nil(t, searcher.lastQuery)
}

func TestRetrievalService_Retrieve_SearchFailure(t *testing.T) {
	searcher := &stubSearcher{err: errors.New("query timeout")}
	extractor := &stubExtractor{filters: models.QueryFilters{Intent: models.IntentSpecificFact}}
	svc := newTestRetrievalService(searcher, extractor, &stubQueryEmbedder{})

	_, _, err := svc.Retrieve(context.Background(), 7, "what was the net profit?")
	assert.Error(t, err)
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"finsightai/internal/dto"
	"finsightai/internal/models"
	"finsightai/internal/repository"
	"finsightai/internal/service"
	"finsightai/pkg/config"
)

type fakeSecurityGetter struct {
	security *models.Security
	err      error
}

func (f *fakeSecurityGetter) GetByTicker(_ context.Context, _ string) (*models.Security, error) {
	return f.security, f.err
}

type fakeTitleLister struct{}

func (f *fakeTitleLister) ListRecentTitles(_ context.Context, _ int64, _ int) ([]string, error) {
	return nil, nil
}

type fakeSearcher struct {
	chunks []*models.RetrievedChunk
}

func (f *fakeSearcher) Search(_ context.Context, _ *models.RetrievalQuery) ([]*models.RetrievedChunk, error) {
	return f.chunks, nil
}

type fakeExtractor struct{}

func (f *fakeExtractor) ExtractQueryFilters(_ context.Context, _ string) models.QueryFilters {
	return models.QueryFilters{Intent: models.IntentSpecificFact}
}

type fakeEmbedder struct{}

func (f *fakeEmbedder) CreateEmbedding(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0}, nil
}

type fakeGenerator struct {
	insight string
}

func (f *fakeGenerator) GenerateInsight(_ context.Context, _ string) (string, error) {
	return f.insight, nil
}

func newTestApp(getter *fakeSecurityGetter, searcher *fakeSearcher, generator *fakeGenerator) *fiber.App {
	nop := zap.NewNop()
	ragCfg := &config.RAGConfig{RecencyWindow: 730 * 24 * time.Hour, FactChunks: 5, SummaryChunks: 20}
	retrieval := service.NewRetrievalService(searcher, &fakeExtractor{}, &fakeEmbedder{}, ragCfg, nop)
	insight := service.NewInsightService(getter, &fakeTitleLister{}, retrieval, generator, nop)
	handler := NewInsightHandler(insight, ".NS", nop)

	app := fiber.New()
	app.Post("/insight", handler.GetInsight)
	return app
}

func postInsight(t *testing.T, app *fiber.App, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/insight", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestGetInsight(t *testing.T) {
	getter := &fakeSecurityGetter{security: &models.Security{ID: 1, Ticker: "TCS.NS", LongName: "Tata Consultancy Services"}}
	searcher := &fakeSearcher{chunks: []*models.RetrievedChunk{
		{DocumentType: models.DocumentTypeAnnualReport, SourceURL: "file:///data/TCS_2024.pdf", ChunkText: "revenue grew"},
	}}
	app := newTestApp(getter, searcher, &fakeGenerator{insight: "Revenue grew."})

	resp := postInsight(t, app, dto.InsightRequest{Ticker: "TCS.NS", Question: "how did revenue grow?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.InsightResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "TCS.NS", body.Ticker)
	assert.Equal(t, "Revenue grew.", body.Insight)
	require.Len(t, body.Context, 1)
	assert.Equal(t, "Annual Report", body.Context[0].DocumentType)
}

func TestGetInsight_Validation(t *testing.T) {
	app := newTestApp(&fakeSecurityGetter{}, &fakeSearcher{}, &fakeGenerator{})

	t.Run("missing fields", func(t *testing.T) {
		resp := postInsight(t, app, dto.InsightRequest{Ticker: "  ", Question: ""})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("wrong ticker suffix", func(t *testing.T) {
		resp := postInsight(t, app, dto.InsightRequest{Ticker: "AAPL", Question: "anything?"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/insight", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetInsight_UnknownTicker(t *testing.T) {
	getter := &fakeSecurityGetter{err: repository.ErrSecurityNotFound}
	app := newTestApp(getter, &fakeSearcher{}, &fakeGenerator{})

	resp := postInsight(t, app, dto.InsightRequest{Ticker: "NOPE.NS", Question: "anything?"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

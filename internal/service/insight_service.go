package service

import (
	"context"
	"fmt"
	"strings"

	"finsightai/internal/dto"
	"finsightai/internal/models"

	"go.uber.org/zap"
)

const (
	// noInformationMessage is returned when retrieval comes back empty —
	// a valid outcome, not an error.
	noInformationMessage = "No relevant information found in the knowledge base for this question."
	// llmUnavailableMessage degrades the response when the model call fails.
	llmUnavailableMessage = "The AI insight generator is currently unavailable. Please check the retrieved documents for your own analysis."
)

// InsightGenerator produces a free-text answer from an assembled prompt.
type InsightGenerator interface {
	GenerateInsight(ctx context.Context, prompt string) (string, error)
}

// SecurityGetter resolves a ticker to its security record.
type SecurityGetter interface {
	GetByTicker(ctx context.Context, ticker string) (*models.Security, error)
}

// NewsTitleLister supplies the newest headlines for a security.
type NewsTitleLister interface {
	ListRecentTitles(ctx context.Context, securityID int64, limit int) ([]string, error)
}

// recentHeadlines is how many news titles get folded into the prompt.
const recentHeadlines = 5

// InsightService answers a free-text question about a security by
// retrieving relevant document chunks and prompting the LLM over them.
type InsightService struct {
	securityRepo SecurityGetter
	newsRepo     NewsTitleLister
	retrieval    *RetrievalService
	generator    InsightGenerator
	logger       *zap.Logger
}

func NewInsightService(
	securityRepo SecurityGetter,
	newsRepo NewsTitleLister,
	retrieval *RetrievalService,
	generator InsightGenerator,
	logger *zap.Logger,
) *InsightService {
	return &InsightService{
		securityRepo: securityRepo,
		newsRepo:     newsRepo,
		retrieval:    retrieval,
		generator:    generator,
		logger:       logger,
	}
}

// AnswerQuestion resolves the ticker, retrieves the ranked chunks and
// generates the insight. Returns repository.ErrSecurityNotFound for an
// untracked ticker.
func (s *InsightService) AnswerQuestion(ctx context.Context, ticker, question string) (*dto.InsightResponse, error) {
	security, err := s.securityRepo.GetByTicker(ctx, ticker)
	if err != nil {
		return nil, err
	}

	chunks, filters, err := s.retrieval.Retrieve(ctx, security.ID, question)
	if err != nil {
		return nil, err
	}

	resp := &dto.InsightResponse{
		Ticker:  ticker,
		Intent:  string(filters.Intent),
		Context: make([]dto.ChunkContext, 0, len(chunks)),
	}

	if len(chunks) == 0 {
		resp.Insight = noInformationMessage
		return resp, nil
	}

	for _, chunk := range chunks {
		cc := dto.ChunkContext{
			DocumentType: string(chunk.DocumentType),
			SourceURL:    chunk.SourceURL,
			Text:         chunk.ChunkText,
		}
		if chunk.ReportDate != nil {
			cc.ReportDate = chunk.ReportDate.Format("2006-01-02")
		}
		resp.Context = append(resp.Context, cc)
	}

	// Headlines enrich the prompt but are never worth failing over.
	headlines, err := s.newsRepo.ListRecentTitles(ctx, security.ID, recentHeadlines)
	if err != nil {
		s.logger.Warn("Failed to load recent headlines", zap.String("ticker", ticker), zap.Error(err))
		headlines = nil
	}

	prompt := buildInsightPrompt(security, question, chunks, headlines, filters.Intent)

	insight, err := s.generator.GenerateInsight(ctx, prompt)
	if err != nil {
		s.logger.Error("Insight generation failed", zap.String("ticker", ticker), zap.Error(err))
		resp.Insight = llmUnavailableMessage
		return resp, nil
	}

	resp.Insight = insight
	return resp, nil
}

func buildInsightPrompt(security *models.Security, question string, chunks []*models.RetrievedChunk, headlines []string, intent models.QueryIntent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Stock: %s (%s)\n\n", security.LongName, security.Ticker)
	b.WriteString("Relevant document excerpts:\n\n")

	for i, chunk := range chunks {
		date := "undated"
		if chunk.ReportDate != nil {
			date = chunk.ReportDate.Format("2006-01-02")
		}
		fmt.Fprintf(&b, "%d. [%s, %s] %s\n\n", i+1, chunk.DocumentType, date, chunk.ChunkText)
	}

	if len(headlines) > 0 {
		b.WriteString("Recent news headlines:\n")
		for i, title := range headlines {
			fmt.Fprintf(&b, "%d. %s\n", i+1, title)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Question: %s\n\n", question)

	if intent == models.IntentDetailedSummary {
		b.WriteString("Provide a structured summary answering the question, grounded strictly in the excerpts above. Cite the document type and date you draw each point from.")
	} else {
		b.WriteString("Answer the question in 2-3 sentences, grounded strictly in the excerpts above. If the excerpts do not contain the answer, say so.")
	}

	return b.String()
}

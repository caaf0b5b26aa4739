package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"finsightai/internal/models"
	"finsightai/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

const systemInstruction = `You are an expert financial analyst for Indian retail investors. You answer questions about listed companies using only the document excerpts and market data provided to you. Be concise, unbiased and easy to understand. Never give financial advice.`

// LLMService wraps the GigaChat client for the two calls the query layer
// makes: structured filter extraction and free-text insight generation.
type LLMService struct {
	client *gigago.Client
	model  *gigago.GenerativeModel
	logger *zap.Logger
}

func NewLLMService(cfg *config.GigaChatConfig, logger *zap.Logger) (*LLMService, error) {
	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel("GigaChat")
	model.SystemInstruction = systemInstruction
	model.Temperature = 0.3

	return &LLMService{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (s *LLMService) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// GenerateInsight runs a plain completion over the assembled prompt.
func (s *LLMService) GenerateInsight(ctx context.Context, prompt string) (string, error) {
	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := s.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate insight: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// queryFilterResponse mirrors the JSON object the model is asked to
// emit. Year is either a number, the string "latest", or null.
type queryFilterResponse struct {
	Intent       string      `json:"intent"`
	DocumentType string      `json:"document_type"`
	Year         interface{} `json:"year"`
}

const filterExtractionPrompt = `Classify the user question below and extract retrieval filters.

Return ONLY a JSON object, no markdown, no comments, in this exact shape:
{
  "intent": "specific_fact" or "detailed_summary",
  "document_type": one of "Annual Report", "Credit Rating", "Concall Transcript", "Concall PPT", or null,
  "year": a four digit year, or the string "latest", or null
}

Rules:
- "specific_fact" is a narrow question answerable with one number or statement; "detailed_summary" asks for a broad overview or analysis.
- Only set document_type when the question clearly names a kind of document.
- Only set year when the question names a year or asks for the most recent/latest document.

Question: %s`

// ExtractQueryFilters classifies a question's intent and pulls optional
// document-type and year filters out of it. Extraction is best effort:
// any malformed model output degrades to a bare specific-fact query
// rather than failing the request.
func (s *LLMService) ExtractQueryFilters(ctx context.Context, question string) models.QueryFilters {
	fallback := models.QueryFilters{Intent: models.IntentSpecificFact}

	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: fmt.Sprintf(filterExtractionPrompt, question)},
	}

	resp, err := s.model.Generate(ctx, messages)
	if err != nil {
		s.logger.Warn("Filter extraction call failed, using defaults", zap.Error(err))
		return fallback
	}
	if len(resp.Choices) == 0 {
		s.logger.Warn("Filter extraction returned no choices, using defaults")
		return fallback
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)

	parsed, err := parseFilterResponse(content)
	if err != nil {
		s.logger.Warn("Filter extraction returned malformed output, using defaults",
			zap.String("content", content),
			zap.Error(err),
		)
		return fallback
	}

	return filtersFromResponse(parsed, s.logger)
}

// parseFilterResponse extracts the JSON object from the model output,
// tolerating markdown fences and surrounding prose.
func parseFilterResponse(content string) (*queryFilterResponse, error) {
	jsonStart := strings.Index(content, "{")
	jsonEnd := strings.LastIndex(content, "}")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd < jsonStart {
		return nil, fmt.Errorf("no JSON object in response")
	}

	jsonStr := content[jsonStart : jsonEnd+1]

	var parsed queryFilterResponse
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		jsonStr = strings.TrimSpace(jsonStr)
		jsonStr = strings.TrimPrefix(jsonStr, "```json")
		jsonStr = strings.TrimPrefix(jsonStr, "```")
		jsonStr = strings.TrimSuffix(jsonStr, "```")
		if err := json.Unmarshal([]byte(strings.TrimSpace(jsonStr)), &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	}

	return &parsed, nil
}

func filtersFromResponse(parsed *queryFilterResponse, logger *zap.Logger) models.QueryFilters {
	filters := models.QueryFilters{Intent: models.IntentSpecificFact}
	if strings.EqualFold(parsed.Intent, string(models.IntentDetailedSummary)) {
		filters.Intent = models.IntentDetailedSummary
	}

	// An unknown document type string means no type filter, not a guess.
	switch {
	case strings.EqualFold(parsed.DocumentType, string(models.DocumentTypeAnnualReport)):
		filters.DocumentType = models.DocumentTypeAnnualReport
	case strings.EqualFold(parsed.DocumentType, string(models.DocumentTypeCreditRating)):
		filters.DocumentType = models.DocumentTypeCreditRating
	case strings.EqualFold(parsed.DocumentType, string(models.DocumentTypeConcallTranscript)):
		filters.DocumentType = models.DocumentTypeConcallTranscript
	case strings.EqualFold(parsed.DocumentType, string(models.DocumentTypeConcallPPT)):
		filters.DocumentType = models.DocumentTypeConcallPPT
	case parsed.DocumentType != "" && parsed.DocumentType != "null":
		logger.Warn("Ignoring unknown document type from filter extraction",
			zap.String("document_type", parsed.DocumentType),
		)
	}

	switch v := parsed.Year.(type) {
	case float64:
		if year := int(v); year >= 1900 && year <= 2200 {
			filters.Year = year
		}
	case string:
		if strings.EqualFold(v, "latest") {
			filters.Latest = true
		} else if year, err := strconv.Atoi(v); err == nil && year >= 1900 && year <= 2200 {
			filters.Year = year
		}
	}

	return filters
}

package handlers

import (
	"errors"
	"strings"

	"finsightai/internal/dto"
	"finsightai/internal/repository"
	"finsightai/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type InsightHandler struct {
	insightService *service.InsightService
	tickerSuffix   string
	logger         *zap.Logger
}

func NewInsightHandler(insightService *service.InsightService, tickerSuffix string, logger *zap.Logger) *InsightHandler {
	return &InsightHandler{
		insightService: insightService,
		tickerSuffix:   tickerSuffix,
		logger:         logger,
	}
}

// GetInsight answers a free-text question about one security.
func (h *InsightHandler) GetInsight(c *fiber.Ctx) error {
	var req dto.InsightRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	req.Ticker = strings.TrimSpace(req.Ticker)
	req.Question = strings.TrimSpace(req.Question)

	if req.Ticker == "" || req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Both ticker and question are required",
		})
	}
	if !strings.HasSuffix(req.Ticker, h.tickerSuffix) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid ticker format. Ticker must end with '" + h.tickerSuffix + "'",
		})
	}

	resp, err := h.insightService.AnswerQuestion(c.UserContext(), req.Ticker, req.Question)
	if err != nil {
		if errors.Is(err, repository.ErrSecurityNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Ticker '" + req.Ticker + "' not found",
			})
		}
		h.logger.Error("Failed to answer question",
			zap.String("ticker", req.Ticker),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate insight",
		})
	}

	return c.JSON(resp)
}

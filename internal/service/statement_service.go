package service

import (
	"context"

	"finsightai/internal/marketdata"
	"finsightai/internal/models"

	"go.uber.org/zap"
)

// StatementsSource fetches one symbol's quarterly statement history.
type StatementsSource interface {
	QuarterlyStatements(ctx context.Context, symbol string) (*marketdata.Statements, error)
}

// StatementStore is the persistence slice the statements updater needs.
type StatementStore interface {
	UpsertIncomeStatement(ctx context.Context, row *models.IncomeStatementRow) error
	UpsertBalanceSheet(ctx context.Context, row *models.BalanceSheetRow) error
	UpsertCashFlow(ctx context.Context, row *models.CashFlowRow) error
}

// StatementService keeps the quarterly statement tables current for
// every tracked security.
type StatementService struct {
	source StatementsSource
	store  StatementStore
	logger *zap.Logger
}

func NewStatementService(source StatementsSource, store StatementStore, logger *zap.Logger) *StatementService {
	return &StatementService{
		source: source,
		store:  store,
		logger: logger,
	}
}

// UpdateStatements fetches and stores the statement history per ticker.
// A provider or store failure is contained to its ticker or row; the
// batch always completes. Returns the number of rows written.
func (s *StatementService) UpdateStatements(ctx context.Context, securities map[string]int64) int {
	total := 0

	for ticker, securityID := range securities {
		stmts, err := s.source.QuarterlyStatements(ctx, ticker)
		if err != nil {
			s.logger.Warn("Failed to fetch statements", zap.String("ticker", ticker), zap.Error(err))
			continue
		}

		written := 0
		for _, row := range stmts.Income {
			row.SecurityID = securityID
			if err := s.store.UpsertIncomeStatement(ctx, row); err != nil {
				s.logger.Error("Failed to store income statement row",
					zap.String("ticker", ticker),
					zap.Time("report_date", row.ReportDate),
					zap.Error(err),
				)
				continue
			}
			written++
		}
		for _, row := range stmts.Balance {
			row.SecurityID = securityID
			if err := s.store.UpsertBalanceSheet(ctx, row); err != nil {
				s.logger.Error("Failed to store balance sheet row",
					zap.String("ticker", ticker),
					zap.Time("report_date", row.ReportDate),
					zap.Error(err),
				)
				continue
			}
			written++
		}
		for _, row := range stmts.CashFlows {
			row.SecurityID = securityID
			if err := s.store.UpsertCashFlow(ctx, row); err != nil {
				s.logger.Error("Failed to store cash flow row",
					zap.String("ticker", ticker),
					zap.Time("report_date", row.ReportDate),
					zap.Error(err),
				)
				continue
			}
			written++
		}

		total += written
		s.logger.Info("Updated statements for ticker",
			zap.String("ticker", ticker),
			zap.Int("rows", written),
		)
	}

	return total
}

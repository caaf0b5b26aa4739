package repository

import (
	"context"
	"fmt"

	"finsightai/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// StatementRepository persists the quarterly statement rows. All three
// tables share the (security_id, report_date) conflict key and ignore
// duplicates.
type StatementRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewStatementRepository(db *pgxpool.Pool, logger *zap.Logger) *StatementRepository {
	return &StatementRepository{
		db:     db,
		logger: logger,
	}
}

func (r *StatementRepository) UpsertIncomeStatement(ctx context.Context, row *models.IncomeStatementRow) error {
	query := squirrel.Insert("income_statements_quarterly").
		Columns("security_id", "report_date", "total_revenue", "cost_of_revenue", "gross_profit",
			"operating_income", "operating_expense", "net_income", "ebit", "ebitda", "basic_eps").
		Values(row.SecurityID, row.ReportDate, row.TotalRevenue, row.CostOfRevenue, row.GrossProfit,
			row.OperatingIncome, row.OperatingExpense, row.NetIncome, row.EBIT, row.EBITDA, row.BasicEPS).
		Suffix("ON CONFLICT (security_id, report_date) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	return r.exec(ctx, query, "income statement")
}

func (r *StatementRepository) UpsertBalanceSheet(ctx context.Context, row *models.BalanceSheetRow) error {
	query := squirrel.Insert("balance_sheets_quarterly").
		Columns("security_id", "report_date", "total_assets", "current_assets", "total_liabilities",
			"current_liabilities", "total_debt", "net_debt", "stockholders_equity").
		Values(row.SecurityID, row.ReportDate, row.TotalAssets, row.CurrentAssets, row.TotalLiabilities,
			row.CurrentLiabilities, row.TotalDebt, row.NetDebt, row.StockholdersEquity).
		Suffix("ON CONFLICT (security_id, report_date) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	return r.exec(ctx, query, "balance sheet")
}

func (r *StatementRepository) UpsertCashFlow(ctx context.Context, row *models.CashFlowRow) error {
	query := squirrel.Insert("cash_flows_quarterly").
		Columns("security_id", "report_date", "operating_cash_flow", "investing_cash_flow",
			"financing_cash_flow", "free_cash_flow").
		Values(row.SecurityID, row.ReportDate, row.OperatingCashFlow, row.InvestingCashFlow,
			row.FinancingCashFlow, row.FreeCashFlow).
		Suffix("ON CONFLICT (security_id, report_date) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	return r.exec(ctx, query, "cash flow")
}

func (r *StatementRepository) exec(ctx context.Context, query squirrel.InsertBuilder, kind string) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to upsert %s: %w", kind, err)
	}

	return nil
}

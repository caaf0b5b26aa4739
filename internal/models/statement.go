package models

import "time"

// Quarterly statement rows are simple upsert-only records keyed by
// (security_id, report_date). Nullable figures stay nil when the data
// provider omits them.

type IncomeStatementRow struct {
	SecurityID       int64     `db:"security_id"`
	ReportDate       time.Time `db:"report_date"`
	TotalRevenue     *float64  `db:"total_revenue"`
	CostOfRevenue    *float64  `db:"cost_of_revenue"`
	GrossProfit      *float64  `db:"gross_profit"`
	OperatingIncome  *float64  `db:"operating_income"`
	OperatingExpense *float64  `db:"operating_expense"`
	NetIncome        *float64  `db:"net_income"`
	EBIT             *float64  `db:"ebit"`
	EBITDA           *float64  `db:"ebitda"`
	BasicEPS         *float64  `db:"basic_eps"`
}

type BalanceSheetRow struct {
	SecurityID         int64     `db:"security_id"`
	ReportDate         time.Time `db:"report_date"`
	TotalAssets        *float64  `db:"total_assets"`
	CurrentAssets      *float64  `db:"current_assets"`
	TotalLiabilities   *float64  `db:"total_liabilities"`
	CurrentLiabilities *float64  `db:"current_liabilities"`
	TotalDebt          *float64  `db:"total_debt"`
	NetDebt            *float64  `db:"net_debt"`
	StockholdersEquity *float64  `db:"stockholders_equity"`
}

type CashFlowRow struct {
	SecurityID        int64     `db:"security_id"`
	ReportDate        time.Time `db:"report_date"`
	OperatingCashFlow *float64  `db:"operating_cash_flow"`
	InvestingCashFlow *float64  `db:"investing_cash_flow"`
	FinancingCashFlow *float64  `db:"financing_cash_flow"`
	FreeCashFlow      *float64  `db:"free_cash_flow"`
}

// Package marketdata pulls quarterly financial statements from the
// Yahoo Finance fundamentals timeseries API.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"finsightai/internal/models"
	"finsightai/pkg/config"
)

// The API exposes each figure as its own timeseries type. One request
// carries all of them, keyed by date in the response.
var (
	incomeMetrics = []string{
		"quarterlyTotalRevenue",
		"quarterlyCostOfRevenue",
		"quarterlyGrossProfit",
		"quarterlyOperatingIncome",
		"quarterlyOperatingExpense",
		"quarterlyNetIncome",
		"quarterlyEBIT",
		"quarterlyEBITDA",
		"quarterlyBasicEPS",
	}
	balanceMetrics = []string{
		"quarterlyTotalAssets",
		"quarterlyCurrentAssets",
		"quarterlyTotalLiabilitiesNetMinorityInterest",
		"quarterlyCurrentLiabilities",
		"quarterlyTotalDebt",
		"quarterlyNetDebt",
		"quarterlyStockholdersEquity",
	}
	cashFlowMetrics = []string{
		"quarterlyOperatingCashFlow",
		"quarterlyInvestingCashFlow",
		"quarterlyFinancingCashFlow",
		"quarterlyFreeCashFlow",
	}
)

// Statements is one symbol's quarterly history. SecurityID is left zero;
// the caller owns the ticker-to-security mapping.
type Statements struct {
	Income    []*models.IncomeStatementRow
	Balance   []*models.BalanceSheetRow
	CashFlows []*models.CashFlowRow
}

// Client fetches fundamentals over HTTP.
type Client struct {
	cfg    config.MarketDataConfig
	client *http.Client
	logger *zap.Logger
}

func NewClient(cfg config.MarketDataConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
		logger: logger,
	}
}

type timeseriesResponse struct {
	Timeseries struct {
		Result []json.RawMessage `json:"result"`
	} `json:"timeseries"`
}

type timeseriesMeta struct {
	Meta struct {
		Type []string `json:"type"`
	} `json:"meta"`
}

type timeseriesPoint struct {
	AsOfDate      string `json:"asOfDate"`
	ReportedValue *struct {
		Raw *float64 `json:"raw"`
	} `json:"reportedValue"`
}

// QuarterlyStatements fetches the symbol's quarterly fundamentals for
// the configured history window and assembles them into statement rows,
// one row per report date. Figures the provider omits stay nil.
func (c *Client) QuarterlyStatements(ctx context.Context, symbol string) (*Statements, error) {
	var types []string
	types = append(types, incomeMetrics...)
	types = append(types, balanceMetrics...)
	types = append(types, cashFlowMetrics...)

	now := time.Now()
	endpoint := fmt.Sprintf("%s/%s?symbol=%s&type=%s&period1=%d&period2=%d",
		c.cfg.BaseURL,
		url.PathEscape(symbol),
		url.QueryEscape(symbol),
		strings.Join(types, ","),
		now.Add(-c.cfg.HistoryWindow).Unix(),
		now.Unix(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create fundamentals request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fundamentals for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fundamentals api returned non-200 status for %s: %s", symbol, resp.Status)
	}

	var parsed timeseriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode fundamentals for %s: %w", symbol, err)
	}

	series, err := c.collectSeries(parsed.Timeseries.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to read fundamentals for %s: %w", symbol, err)
	}

	stmts := assembleStatements(series)
	c.logger.Debug("Fetched fundamentals",
		zap.String("symbol", symbol),
		zap.Int("income_rows", len(stmts.Income)),
		zap.Int("balance_rows", len(stmts.Balance)),
		zap.Int("cash_flow_rows", len(stmts.CashFlows)),
	)

	return stmts, nil
}

// collectSeries flattens the response into metric -> date -> value. Each
// result entry carries its values under a key named after its own type,
// so the entry is decoded twice: meta first, then the dynamic key.
func (c *Client) collectSeries(results []json.RawMessage) (map[string]map[string]float64, error) {
	series := make(map[string]map[string]float64)

	for _, raw := range results {
		var meta timeseriesMeta
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, err
		}
		if len(meta.Meta.Type) == 0 {
			continue
		}
		metric := meta.Meta.Type[0]

		var entry map[string]json.RawMessage
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, err
		}
		pointsRaw, ok := entry[metric]
		if !ok {
			continue
		}

		var points []*timeseriesPoint
		if err := json.Unmarshal(pointsRaw, &points); err != nil {
			return nil, err
		}

		for _, p := range points {
			if p == nil || p.ReportedValue == nil || p.ReportedValue.Raw == nil || p.AsOfDate == "" {
				continue
			}
			if series[metric] == nil {
				series[metric] = make(map[string]float64)
			}
			series[metric][p.AsOfDate] = *p.ReportedValue.Raw
		}
	}

	return series, nil
}

func assembleStatements(series map[string]map[string]float64) *Statements {
	dates := make(map[string]bool)
	for _, byDate := range series {
		for date := range byDate {
			dates[date] = true
		}
	}

	sorted := make([]string, 0, len(dates))
	for date := range dates {
		sorted = append(sorted, date)
	}
	sort.Strings(sorted)

	value := func(metric, date string) *float64 {
		if v, ok := series[metric][date]; ok {
			return &v
		}
		return nil
	}

	stmts := &Statements{}
	for _, date := range sorted {
		reportDate, err := time.Parse("2006-01-02", date)
		if err != nil {
			continue
		}

		if anyPresent(series, incomeMetrics, date) {
			stmts.Income = append(stmts.Income, &models.IncomeStatementRow{
				ReportDate:       reportDate,
				TotalRevenue:     value("quarterlyTotalRevenue", date),
				CostOfRevenue:    value("quarterlyCostOfRevenue", date),
				GrossProfit:      value("quarterlyGrossProfit", date),
				OperatingIncome:  value("quarterlyOperatingIncome", date),
				OperatingExpense: value("quarterlyOperatingExpense", date),
				NetIncome:        value("quarterlyNetIncome", date),
				EBIT:             value("quarterlyEBIT", date),
				EBITDA:           value("quarterlyEBITDA", date),
				BasicEPS:         value("quarterlyBasicEPS", date),
			})
		}

		if anyPresent(series, balanceMetrics, date) {
			stmts.Balance = append(stmts.Balance, &models.BalanceSheetRow{
				ReportDate:         reportDate,
				TotalAssets:        value("quarterlyTotalAssets", date),
				CurrentAssets:      value("quarterlyCurrentAssets", date),
				TotalLiabilities:   value("quarterlyTotalLiabilitiesNetMinorityInterest", date),
				CurrentLiabilities: value("quarterlyCurrentLiabilities", date),
				TotalDebt:          value("quarterlyTotalDebt", date),
				NetDebt:            value("quarterlyNetDebt", date),
				StockholdersEquity: value("quarterlyStockholdersEquity", date),
			})
		}

		if anyPresent(series, cashFlowMetrics, date) {
			stmts.CashFlows = append(stmts.CashFlows, &models.CashFlowRow{
				ReportDate:        reportDate,
				OperatingCashFlow: value("quarterlyOperatingCashFlow", date),
				InvestingCashFlow: value("quarterlyInvestingCashFlow", date),
				FinancingCashFlow: value("quarterlyFinancingCashFlow", date),
				FreeCashFlow:      value("quarterlyFreeCashFlow", date),
			})
		}
	}

	return stmts
}

func anyPresent(series map[string]map[string]float64, metrics []string, date string) bool {
	for _, m := range metrics {
		if _, ok := series[m][date]; ok {
			return true
		}
	}
	return false
}

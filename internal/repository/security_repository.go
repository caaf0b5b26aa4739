package repository

import (
	"context"
	"errors"
	"fmt"

	"finsightai/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ErrSecurityNotFound is returned when a ticker has no row.
var ErrSecurityNotFound = errors.New("security not found")

type SecurityRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewSecurityRepository(db *pgxpool.Pool, logger *zap.Logger) *SecurityRepository {
	return &SecurityRepository{
		db:     db,
		logger: logger,
	}
}

// GetAll returns every tracked security ordered by ticker.
func (r *SecurityRepository) GetAll(ctx context.Context) ([]*models.Security, error) {
	query := squirrel.Select("id", "ticker", "long_name").
		From("securities").
		OrderBy("ticker").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list securities: %w", err)
	}
	defer rows.Close()

	var securities []*models.Security
	for rows.Next() {
		var s models.Security
		if err := rows.Scan(&s.ID, &s.Ticker, &s.LongName); err != nil {
			return nil, err
		}
		securities = append(securities, &s)
	}

	return securities, rows.Err()
}

func (r *SecurityRepository) GetByTicker(ctx context.Context, ticker string) (*models.Security, error) {
	query := squirrel.Select("id", "ticker", "long_name").
		From("securities").
		Where(squirrel.Eq{"ticker": ticker}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var s models.Security
	err = r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.Ticker, &s.LongName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSecurityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get security %s: %w", ticker, err)
	}

	return &s, nil
}

// TickerMap builds the read-only ticker to id lookup table used by the
// ingestion run's entity resolver.
func (r *SecurityRepository) TickerMap(ctx context.Context) (map[string]int64, error) {
	securities, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	m := make(map[string]int64, len(securities))
	for _, s := range securities {
		m[s.Ticker] = s.ID
	}

	r.logger.Info("Loaded securities lookup table", zap.Int("count", len(m)))
	return m, nil
}

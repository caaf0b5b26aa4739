package repository

import (
	"context"
	"fmt"

	"finsightai/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ArticleRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewArticleRepository(db *pgxpool.Pool, logger *zap.Logger) *ArticleRepository {
	return &ArticleRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts an article unless its URL is already stored. Returns
// true when a new row was written.
func (r *ArticleRepository) Upsert(ctx context.Context, article *models.NewsArticle) (bool, error) {
	query := squirrel.Insert("news_articles").
		Columns("id", "security_id", "title", "url", "published_at", "content", "embedding").
		Values(article.ID, article.SecurityID, article.Title, article.URL, article.PublishedAt, article.Content, toVector(article.Embedding)).
		Suffix("ON CONFLICT (url) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("failed to upsert article: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ListRecentTitles returns the newest article titles for a security.
func (r *ArticleRepository) ListRecentTitles(ctx context.Context, securityID int64, limit int) ([]string, error) {
	query := squirrel.Select("title").
		From("news_articles").
		Where(squirrel.Eq{"security_id": securityID}).
		OrderBy("published_at DESC NULLS LAST").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		titles = append(titles, title)
	}

	return titles, rows.Err()
}

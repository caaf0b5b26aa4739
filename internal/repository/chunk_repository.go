package repository

import (
	"context"
	"fmt"
	"time"

	"finsightai/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ChunkRepository is the persistence gateway for document chunks. Every
// method issues a single statement, so concurrent callers never observe
// partial multi-row writes.
type ChunkRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewChunkRepository(db *pgxpool.Pool, logger *zap.Logger) *ChunkRepository {
	return &ChunkRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts a chunk unless an identical one from the same source
// already exists. Returns true when a new row was written.
func (r *ChunkRepository) Upsert(ctx context.Context, chunk *models.DocumentChunk) (bool, error) {
	query := squirrel.Insert("document_chunks").
		Columns("security_id", "document_type", "source_url", "report_date", "chunk_text", "embedding", "chunk_hash").
		Values(chunk.SecurityID, chunk.DocumentType, chunk.SourceURL, chunk.ReportDate, chunk.ChunkText, toVector(chunk.Embedding), chunk.ChunkHash).
		Suffix("ON CONFLICT (security_id, document_type, source_url, chunk_hash) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("failed to upsert chunk: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// DeleteBySource removes every chunk that came from the given source
// locator. Used to roll back a file that failed mid-ingestion.
func (r *ChunkRepository) DeleteBySource(ctx context.Context, sourceURL string) (int64, error) {
	query := squirrel.Delete("document_chunks").
		Where(squirrel.Eq{"source_url": sourceURL}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete chunks for %s: %w", sourceURL, err)
	}

	r.logger.Info("Deleted chunks for source",
		zap.String("source_url", sourceURL),
		zap.Int64("count", tag.RowsAffected()),
	)

	return tag.RowsAffected(), nil
}

// Search returns the chunks matching the query's metadata filters, ranked
// by the compound key the query asks for. When Latest is set, recency
// wins over vector distance; otherwise ordering is nearest-neighbor only.
func (r *ChunkRepository) Search(ctx context.Context, q *models.RetrievalQuery) ([]*models.RetrievedChunk, error) {
	sql, args, err := buildSearchQuery(q)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	var results []*models.RetrievedChunk
	for rows.Next() {
		var chunk models.RetrievedChunk
		if err := rows.Scan(&chunk.DocumentType, &chunk.SourceURL, &chunk.ReportDate, &chunk.ChunkText, &chunk.Distance); err != nil {
			return nil, err
		}
		results = append(results, &chunk)
	}

	return results, rows.Err()
}

func buildSearchQuery(q *models.RetrievalQuery) (string, []interface{}, error) {
	builder := squirrel.Select("document_type", "source_url", "report_date", "chunk_text").
		Column(squirrel.Alias(squirrel.Expr("embedding <=> ?", toVector(q.Embedding)), "distance")).
		From("document_chunks").
		Where(squirrel.Eq{"security_id": q.SecurityID}).
		PlaceholderFormat(squirrel.Dollar)

	if q.Filters.DocumentType != "" {
		builder = builder.Where(squirrel.Eq{"document_type": q.Filters.DocumentType})
	}

	switch {
	case q.Filters.Year != 0:
		start := time.Date(q.Filters.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(q.Filters.Year, time.December, 31, 0, 0, 0, 0, time.UTC)
		builder = builder.Where(squirrel.GtOrEq{"report_date": start}).
			Where(squirrel.LtOrEq{"report_date": end})
	case q.Filters.Latest:
		// No date predicate: recency is handled by the sort order so the
		// newest document's chunks surface first.
	case q.RecencyCutoff != nil:
		builder = builder.Where(squirrel.GtOrEq{"report_date": *q.RecencyCutoff})
	}

	if q.Filters.Latest {
		builder = builder.OrderBy("report_date DESC NULLS LAST", "distance ASC")
	} else {
		builder = builder.OrderBy("distance ASC")
	}

	return builder.Limit(uint64(q.Limit)).ToSql()
}

// toVector converts a []float32 into the flat array form the pgvector
// column accepts as a parameter.
func toVector(embedding []float32) pgtype.FlatArray[float32] {
	vec := pgtype.FlatArray[float32]{}
	for _, v := range embedding {
		vec = append(vec, v)
	}
	return vec
}

package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsightai/internal/models"
)

func baseQuery() *models.RetrievalQuery {
	return &models.RetrievalQuery{
		SecurityID: 7,
		Filters:    models.QueryFilters{Intent: models.IntentSpecificFact},
		Embedding:  []float32{0.1, 0.2},
		Limit:      5,
	}
}

func TestBuildSearchQuery_Defaults(t *testing.T) {
	cutoff := time.Date(2024, 8, 29, 0, 0, 0, 0, time.UTC)
	q := baseQuery()
	q.RecencyCutoff = &cutoff

	sql, args, err := buildSearchQuery(q)
	require.NoError(t, err)

	assert.Contains(t, sql, "embedding <=> $1")
	assert.Contains(t, sql, "security_id = $2")
	assert.Contains(t, sql, "report_date >= $3")
	assert.Contains(t, sql, "ORDER BY distance ASC")
	assert.Contains(t, sql, "LIMIT 5")
	assert.NotContains(t, sql, "document_type =")
	require.Len(t, args, 3)
	assert.Equal(t, cutoff, args[2])
}

func TestBuildSearchQuery_ExplicitYear(t *testing.T) {
	q := baseQuery()
	q.Filters.Year = 2023
	q.Filters.DocumentType = models.DocumentTypeAnnualReport

	sql, args, err := buildSearchQuery(q)
	require.NoError(t, err)

	assert.Contains(t, sql, "document_type = $3")
	assert.Contains(t, sql, "report_date >= $4")
	assert.Contains(t, sql, "report_date <= $5")
	require.Len(t, args, 5)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), args[3])
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), args[4])
}

func TestBuildSearchQuery_Latest(t *testing.T) {
	// A leftover cutoff must not constrain a "latest" query.
	cutoff := time.Date(2024, 8, 29, 0, 0, 0, 0, time.UTC)
	q := baseQuery()
	q.Filters.Latest = true
	q.RecencyCutoff = &cutoff

	sql, args, err := buildSearchQuery(q)
	require.NoError(t, err)

	// Recency outranks distance so the newest document wins regardless
	// of how near older chunks are.
	assert.Contains(t, sql, "ORDER BY report_date DESC NULLS LAST, distance ASC")
	assert.NotContains(t, sql, "report_date >=")
	require.Len(t, args, 2)
}

func TestBuildSearchQuery_NoRecencyCutoff(t *testing.T) {
	sql, args, err := buildSearchQuery(baseQuery())
	require.NoError(t, err)

	assert.NotContains(t, sql, "report_date")
	require.Len(t, args, 2)
}

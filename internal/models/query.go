package models

import "time"

// QueryIntent classifies what shape of answer a question wants: a narrow
// fact or a broad structured summary.
type QueryIntent string

const (
	IntentSpecificFact    QueryIntent = "specific_fact"
	IntentDetailedSummary QueryIntent = "detailed_summary"
)

// QueryFilters is the structured output of the LLM filter-extraction
// call. Zero values mean "no filter".
type QueryFilters struct {
	Intent       QueryIntent
	DocumentType DocumentType // empty when no type filter applies
	Year         int          // explicit year, 0 when absent
	Latest       bool         // the question asked for the newest document
}

// RetrievalQuery is the fully resolved search request: which security,
// which filters, how many chunks, and the vector to rank against. Built
// per request, never persisted.
type RetrievalQuery struct {
	SecurityID int64
	Filters    QueryFilters
	// RecencyCutoff bounds report_date from below when no explicit year
	// was extracted. Nil means no recency predicate at all.
	RecencyCutoff *time.Time
	Embedding     []float32
	Limit         int
}

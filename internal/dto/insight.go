package dto

type InsightRequest struct {
	Ticker   string `json:"ticker"`
	Question string `json:"question"`
}

type ChunkContext struct {
	DocumentType string `json:"document_type"`
	ReportDate   string `json:"report_date,omitempty"`
	SourceURL    string `json:"source_url"`
	Text         string `json:"text"`
}

type InsightResponse struct {
	Ticker  string         `json:"ticker"`
	Intent  string         `json:"intent"`
	Context []ChunkContext `json:"context"`
	Insight string         `json:"insight"`
}

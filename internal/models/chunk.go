package models

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

type DocumentType string

const (
	DocumentTypeAnnualReport      DocumentType = "Annual Report"
	DocumentTypeCreditRating      DocumentType = "Credit Rating"
	DocumentTypeConcallTranscript DocumentType = "Concall Transcript"
	DocumentTypeConcallPPT        DocumentType = "Concall PPT"
	DocumentTypeUnknown           DocumentType = "Unknown"
)

// DocumentChunk is one overlapping slice of a source document, the unit
// of embedding and retrieval. Rows are write-once: a chunk is inserted
// during ingestion and only ever removed in bulk with its source file.
type DocumentChunk struct {
	SecurityID   int64        `db:"security_id"`
	DocumentType DocumentType `db:"document_type"`
	SourceURL    string       `db:"source_url"`
	ReportDate   *time.Time   `db:"report_date"`
	ChunkText    string       `db:"chunk_text"`
	Embedding    []float32    `db:"embedding"`
	ChunkHash    string       `db:"chunk_hash"`
}

// NewDocumentChunk derives the content hash from the chunk text, so that
// (security_id, document_type, source_url, chunk_hash) can act as the
// dedup key in the store.
func NewDocumentChunk(securityID int64, docType DocumentType, sourceURL string, reportDate *time.Time, chunkText string, embedding []float32) *DocumentChunk {
	sum := md5.Sum([]byte(chunkText))
	return &DocumentChunk{
		SecurityID:   securityID,
		DocumentType: docType,
		SourceURL:    sourceURL,
		ReportDate:   reportDate,
		ChunkText:    chunkText,
		Embedding:    embedding,
		ChunkHash:    hex.EncodeToString(sum[:]),
	}
}

// RetrievedChunk is a chunk row that came back from a similarity search.
type RetrievedChunk struct {
	DocumentType DocumentType
	SourceURL    string
	ReportDate   *time.Time
	ChunkText    string
	Distance     float64
}

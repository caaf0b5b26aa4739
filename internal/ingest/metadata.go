package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"finsightai/internal/models"
)

// Downloaded documents follow the convention
// <TICKER>_<TAG>_[<AGENCY>_]<DATECODE>.<pdf|txt>, with annual reports
// also allowed in the short <TICKER>_<YYYY>.pdf form the report fetcher
// produced historically.

var (
	// ErrMalformedFilename means the name cannot be parsed at all.
	ErrMalformedFilename = errors.New("malformed filename")
	// ErrWrongExtension means the name parsed but the extension does not
	// match the document type, so the file belongs to a different pass.
	ErrWrongExtension = errors.New("extension does not match document type")
)

var typeTags = map[string]models.DocumentType{
	"AR":      models.DocumentTypeAnnualReport,
	"CR":      models.DocumentTypeCreditRating,
	"Concall": models.DocumentTypeConcallTranscript,
	"PPT":     models.DocumentTypeConcallPPT,
}

// FileMetadata is what a well-formed source filename yields.
type FileMetadata struct {
	Ticker       string
	DocumentType models.DocumentType
	ReportDate   *time.Time
}

// ExtractFileMetadata derives ticker, document type and report date from
// a source filename. A date that fails to parse is not a rejection; the
// metadata simply carries no report date.
func ExtractFileMetadata(filename string) (*FileMetadata, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	parts := strings.Split(base, "_")

	var docType models.DocumentType
	switch {
	case len(parts) == 2 && isDigits(parts[1]) && len(parts[1]) == 4:
		// Short annual-report form: RELIANCE_2024.pdf
		docType = models.DocumentTypeAnnualReport
	case len(parts) >= 3:
		if t, ok := typeTags[parts[1]]; ok {
			docType = t
		} else {
			docType = models.DocumentTypeUnknown
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrMalformedFilename, filename)
	}

	if err := checkExtension(docType, ext); err != nil {
		return nil, err
	}

	return &FileMetadata{
		Ticker:       parts[0],
		DocumentType: docType,
		ReportDate:   parseDateCode(parts[len(parts)-1]),
	}, nil
}

// checkExtension enforces which formats each document type arrives in:
// annual reports, transcripts and presentations are always PDFs, while
// credit ratings may have been saved as extracted text.
func checkExtension(docType models.DocumentType, ext string) error {
	switch docType {
	case models.DocumentTypeAnnualReport, models.DocumentTypeConcallTranscript, models.DocumentTypeConcallPPT:
		if ext != ".pdf" {
			return fmt.Errorf("%w: %s requires .pdf, got %s", ErrWrongExtension, docType, ext)
		}
	case models.DocumentTypeCreditRating:
		if ext != ".pdf" && ext != ".txt" {
			return fmt.Errorf("%w: %s requires .pdf or .txt, got %s", ErrWrongExtension, docType, ext)
		}
	}
	return nil
}

// parseDateCode interprets the trailing date token by length: a bare
// year is treated as the fiscal year end (March 31), eight digits as an
// exact day, six digits as the first of the month.
func parseDateCode(code string) *time.Time {
	if !isDigits(code) {
		return nil
	}

	var (
		t   time.Time
		err error
	)
	switch len(code) {
	case 4:
		t, err = time.Parse("2006-01-02", code+"-03-31")
	case 8:
		t, err = time.Parse("20060102", code)
	case 6:
		t, err = time.Parse("200601", code)
	default:
		return nil
	}
	if err != nil {
		return nil
	}

	return &t
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

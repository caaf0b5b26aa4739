// Package ingest implements the document ingestion pipeline: parsing
// downloaded filings into flat text, cutting the text into overlapping
// word windows, deriving metadata from the source filename, and driving
// parse-chunk-embed-persist per file with quarantine on failure.
package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// ErrUnsupportedFileType is returned for extensions the parser cannot read.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// Parser extracts a single normalized text body from a raw source file.
type Parser struct {
	logger *zap.Logger
}

func NewParser(logger *zap.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse reads a PDF or plain-text file and returns its content as one
// flat string: every run of whitespace collapsed to a single space, no
// paragraph structure. An empty result and an error are equivalent for
// callers; both mean the file contributes nothing.
func (p *Parser) Parse(path string) (string, error) {
	var (
		raw string
		err error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		raw, err = p.parsePDF(path)
	case ".txt":
		raw, err = p.parseTxt(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, filepath.Ext(path))
	}
	if err != nil {
		return "", err
	}

	return strings.Join(strings.Fields(raw), " "), nil
}

func (p *Parser) parsePDF(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer doc.Close()

	var builder strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			p.logger.Warn("Failed to extract text from page",
				zap.Int("page", i+1),
				zap.String("file", path),
				zap.Error(err),
			)
			continue
		}
		if pageText != "" {
			builder.WriteString(pageText)
			builder.WriteString("\n")
		}
	}

	return builder.String(), nil
}

func (p *Parser) parseTxt(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("file %s is not valid UTF-8", path)
	}

	return string(data), nil
}

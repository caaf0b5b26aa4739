package ingest

import (
	"fmt"
	"strings"
	"unicode"
)

// Chunker splits a text body into overlapping fixed-size word windows.
type Chunker struct {
	chunkSize int
	overlap   int
}

// NewChunker validates the window parameters up front: an overlap equal
// to or larger than the chunk size would keep the window from ever
// advancing.
func NewChunker(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("overlap must be in [0, chunk size), got overlap=%d size=%d", overlap, chunkSize)
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}, nil
}

// Chunk slides a window of chunkSize words over the text, advancing by
// chunkSize-overlap words each step. The final window may be shorter.
// Empty input yields an empty result, not an error.
func (c *Chunker) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := c.chunkSize - c.overlap
	var chunks []string
	for start := 0; start < len(words); start += step {
		end := start + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, stripControl(strings.Join(words[start:end], " ")))
	}

	return chunks
}

// stripControl removes null and other control characters that upset the
// store's text encoding.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

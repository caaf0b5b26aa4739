package ingest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChunker(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		c, err := NewChunker(300, 50)
		require.NoError(t, err)
		require.NotNil(t, c)
	})

	t.Run("zero chunk size", func(t *testing.T) {
		_, err := NewChunker(0, 0)
		assert.Error(t, err)
	})

	t.Run("negative overlap", func(t *testing.T) {
		_, err := NewChunker(300, -1)
		assert.Error(t, err)
	})

	t.Run("overlap equal to chunk size", func(t *testing.T) {
		_, err := NewChunker(100, 100)
		assert.Error(t, err)
	})
}

func TestChunker_Chunk(t *testing.T) {
	words := make([]string, 700)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	text := strings.Join(words, " ")

	c, err := NewChunker(300, 50)
	require.NoError(t, err)

	chunks := c.Chunk(text)
	// Step is 250, so windows start at words 0, 250 and 500.
	require.Len(t, chunks, 3)

	assert.True(t, strings.HasPrefix(chunks[0], "w0 "))
	assert.True(t, strings.HasPrefix(chunks[1], "w250 "))
	assert.True(t, strings.HasPrefix(chunks[2], "w500 "))

	assert.Equal(t, 300, len(strings.Fields(chunks[0])))
	assert.Equal(t, 300, len(strings.Fields(chunks[1])))
	assert.Equal(t, 200, len(strings.Fields(chunks[2])))

	// The overlap region appears in consecutive windows.
	assert.Contains(t, chunks[0], "w250")
	assert.Contains(t, chunks[1], "w299")
}

func TestChunker_Chunk_ShortText(t *testing.T) {
	c, err := NewChunker(300, 50)
	require.NoError(t, err)

	chunks := c.Chunk("revenue grew twelve percent year on year")
	require.Len(t, chunks, 1)
	assert.Equal(t, "revenue grew twelve percent year on year", chunks[0])
}

func TestChunker_Chunk_Empty(t *testing.T) {
	c, err := NewChunker(300, 50)
	require.NoError(t, err)

	assert.Empty(t, c.Chunk(""))
	assert.Empty(t, c.Chunk("   \n\t  "))
}

func TestChunker_Chunk_StripsControlCharacters(t *testing.T) {
	c, err := NewChunker(10, 0)
	require.NoError(t, err)

	chunks := c.Chunk("net\x00profit margin\x07improved")
	require.Len(t, chunks, 1)
	assert.Equal(t, "netprofit marginimproved", chunks[0])
}

func TestChunker_Chunk_ZeroOverlap(t *testing.T) {
	c, err := NewChunker(2, 0)
	require.NoError(t, err)

	chunks := c.Chunk("a b c d e")
	require.Len(t, chunks, 3)
	assert.Equal(t, []string{"a b", "c d", "e"}, chunks)
}

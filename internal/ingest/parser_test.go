package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParser_Parse_Txt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "TCS_CR_crisil_20250730.txt")
	content := "CRISIL  has\treaffirmed its\n\nAAA rating\n on the long-term debt.\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p := NewParser(zap.NewNop())
	text, err := p.Parse(path)
	require.NoError(t, err)

	assert.Equal(t, "CRISIL has reaffirmed its AAA rating on the long-term debt.", text)
}

func TestParser_Parse_EmptyTxt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	p := NewParser(zap.NewNop())
	text, err := p.Parse(path)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestParser_Parse_InvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "binary.txt")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0x41}, 0o644))

	p := NewParser(zap.NewNop())
	_, err := p.Parse(path)
	assert.Error(t, err)
}

func TestParser_Parse_UnsupportedExtension(t *testing.T) {
	p := NewParser(zap.NewNop())
	_, err := p.Parse("report.docx")
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestParser_Parse_MissingFile(t *testing.T) {
	p := NewParser(zap.NewNop())
	_, err := p.Parse(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

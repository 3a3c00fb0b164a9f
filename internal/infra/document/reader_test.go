package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestRead(t *testing.T) {
	path := writeFile(t, "report.pdf.txt", []byte("Line one\r\nLine two\rLine three\n"))

	doc, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, "report.pdf.txt", doc.Name)
	assert.Equal(t, "report.pdf", doc.Stem())
	assert.Equal(t, path, doc.Path)
	assert.True(t, filepath.IsAbs(doc.AbsPath))
	assert.Equal(t, "Line one\nLine two\nLine three\n", doc.Text)
	assert.NotEmpty(t, doc.ContentType)
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	binary := writeFile(t, "image.bin", []byte{0x89, 'P', 'N', 'G', 0x00, 0x00, 0x01, 0x02})
	_, err = Read(binary)
	assert.ErrorIs(t, err, ErrBinaryDocument)

	latin1 := writeFile(t, "latin1.txt", []byte("caf\xe9 au lait"))
	_, err = Read(latin1)
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestRead_Empty(t *testing.T) {
	doc, err := Read(writeFile(t, "empty.txt", nil))
	require.NoError(t, err)
	assert.Empty(t, doc.Text)
	assert.Equal(t, "text/plain", doc.ContentType)
}

func TestDetectContentType_FallsBackToSniffing(t *testing.T) {
	d := NewContentTypeDetector()
	assert.Equal(t, "text/plain", d.DetectContentType("unknown.zzz", nil))
	assert.NotEmpty(t, d.DetectContentType("unknown.zzz", []byte("plain words")))
}

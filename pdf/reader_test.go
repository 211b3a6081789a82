package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextMissingFile(t *testing.T) {
	e := NewExtractor()

	_, err := e.ExtractText("/no/such/document.pdf")
	assert.Error(t, err)
}

func TestExtractTextNotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.pdf")
	require.NoError(t, os.WriteFile(path, []byte("just some text"), 0o644))

	e := NewExtractor()
	_, err := e.ExtractText(path)
	assert.Error(t, err)
}

package archive

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := writer.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return buf.Bytes()
}

func TestExtractFile(t *testing.T) {
	data := buildZip(t, map[string]string{
		"Arvernus-iRock-Modbus-abc123/README.md": "readme",
		"Arvernus-iRock-Modbus-abc123/data.yaml": "version: \"2.0.0\"",
	})

	content, err := ExtractFile(data, "data.yaml")
	require.NoError(t, err)
	assert.Equal(t, "version: \"2.0.0\"", string(content))
}

func TestExtractFileNotFound(t *testing.T) {
	data := buildZip(t, map[string]string{
		"Arvernus-iRock-Modbus-abc123/README.md": "readme",
	})

	_, err := ExtractFile(data, "data.yaml")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestExtractFileBadArchive(t *testing.T) {
	_, err := ExtractFile([]byte("not a zip file"), "data.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open zip archive")
}

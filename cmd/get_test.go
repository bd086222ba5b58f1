package cmd

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostProcessBlocksExtractionOnIncompleteSet(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"game.part1.rar", "game.part3.rar"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	err := postProcess(getOptions{outputDir: dir, extract: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is incomplete")

	// nothing was extracted and no part was cleaned up
	for _, name := range []string{"game.part1.rar", "game.part3.rar"} {
		_, statErr := os.Stat(filepath.Join(dir, name))
		require.NoError(t, statErr)
	}
}

func TestPostProcessExtractsAndCleansCompleteSet(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("payload.txt")
	require.NoError(t, err)
	_, err = f.Write([]byte("contents"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	archive := filepath.Join(dir, "bundle.zip")
	require.NoError(t, os.WriteFile(archive, buf.Bytes(), 0644))

	require.NoError(t, postProcess(getOptions{outputDir: dir, extract: true}))

	data, err := os.ReadFile(filepath.Join(dir, "payload.txt"))
	require.NoError(t, err)
	assert.Equal(t, "contents", string(data))
	_, err = os.Stat(archive)
	assert.True(t, os.IsNotExist(err))
}

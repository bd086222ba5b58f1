package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.00 KB", FormatBytes(1024))
	assert.Equal(t, "1.50 MB", FormatBytes(1536*1024))
	assert.Equal(t, "2.00 GB", FormatBytes(2*1024*1024*1024))
}

func TestFormatSpeed(t *testing.T) {
	assert.Equal(t, "0 B/s", FormatSpeed(1024, 0))
	assert.Equal(t, "1.00 KB/s", FormatSpeed(2048, 2))
	assert.Equal(t, "512 B/s", FormatSpeed(512, 1))
}

func TestParseHeaderArgs(t *testing.T) {
	headers := ParseHeaderArgs([]string{
		"Authorization: Bearer abc123",
		"X-Custom:value",
		"malformed-header",
	})
	assert.Equal(t, map[string]string{
		"Authorization": "Bearer abc123",
		"X-Custom":      "value",
	}, headers)
}

func TestRenewOutputPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.rar")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	renewed := RenewOutputPath(path)
	assert.Equal(t, filepath.Join(dir, "file-(1).rar"), renewed)

	require.NoError(t, os.WriteFile(renewed, []byte("x"), 0644))
	assert.Equal(t, filepath.Join(dir, "file-(2).rar"), RenewOutputPath(path))
}

func TestReadURLList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "urls.txt")
	content := "https://example.com/a.part1.rar\n\n# comment line\n  https://example.com/a.part2.rar  \n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	urls, err := ReadURLList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/a.part1.rar",
		"https://example.com/a.part2.rar",
	}, urls)

	_, err = ReadURLList(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
}

func TestCleanFunction(t *testing.T) {
	dir := t.TempDir()
	tempDir := filepath.Join(dir, TempDirName)
	require.NoError(t, os.MkdirAll(tempDir, 0755))
	for _, name := range []string{"data.bin.part0", "data.bin.part1", "other.bin.part0"} {
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, name), []byte("x"), 0644))
	}

	require.NoError(t, CleanFunction(filepath.Join(dir, "data.bin")))

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "other.bin.part0", entries[0].Name())

	require.NoError(t, CleanFunction(filepath.Join(dir, "other.bin")))
	_, err = os.Stat(tempDir)
	assert.True(t, os.IsNotExist(err))
}

func TestCleanFunctionWithoutTempDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, CleanFunction(filepath.Join(dir, "data.bin")))
}

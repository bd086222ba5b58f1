package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyparts/easyparts/internal/utils"
)

func TestCleanCmdRemovesTempFiles(t *testing.T) {
	dir := t.TempDir()
	tempDir := filepath.Join(dir, utils.TempDirName)
	require.NoError(t, os.MkdirAll(tempDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "data.bin.part0"), []byte("x"), 0644))

	cmd := newCleanCmd()
	require.NoError(t, cmd.RunE(cmd, []string{filepath.Join(dir, "data.bin")}))
	_, err := os.Stat(tempDir)
	assert.True(t, os.IsNotExist(err))
}

func TestCleanCmdNoTempDir(t *testing.T) {
	dir := t.TempDir()
	cmd := newCleanCmd()
	require.NoError(t, cmd.RunE(cmd, []string{filepath.Join(dir, "data.bin")}))
}

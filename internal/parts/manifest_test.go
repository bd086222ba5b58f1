package parts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "part.001")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	sum, size, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)
	// sha256("hello")
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", sum)
}

func TestManifestRoundtrip(t *testing.T) {
	dir := t.TempDir()
	names := []string{"game.part1.rar", "game.part2.rar"}
	for i, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte{byte(i), byte(i + 1)}, 0644))
	}

	manifest, err := GenerateManifest(dir, names)
	require.NoError(t, err)
	require.Len(t, manifest.Parts, 2)
	assert.Equal(t, int64(2), manifest.Parts[0].Size)

	require.NoError(t, manifest.Write(dir))

	loaded, err := LoadManifest(filepath.Join(dir, ManifestName))
	require.NoError(t, err)
	require.Len(t, loaded.Parts, 2)
	assert.Equal(t, manifest.Parts[0].SHA256, loaded.Parts[0].SHA256)
	assert.Equal(t, manifest.Parts[1].Name, loaded.Parts[1].Name)
}

func TestGenerateManifestMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := GenerateManifest(dir, []string{"nope.part1.rar"})
	require.Error(t, err)
}

func TestLoadManifestRejectsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	require.NoError(t, os.WriteFile(path, []byte("created: 2026-01-01T00:00:00Z\n"), 0644))
	_, err := LoadManifest(path)
	require.Error(t, err)
}

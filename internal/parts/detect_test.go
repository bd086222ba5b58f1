package parts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		ordinal int
		kind    Kind
	}{
		{"game.part1.rar", "game", 1, KindFirst},
		{"game.part2.rar", "game", 2, KindVolume},
		{"game.part10.rar", "game", 10, KindVolume},
		{"backup.7z.001", "backup.7z", 1, KindFirst},
		{"backup.7z.002", "backup.7z", 2, KindVolume},
		{"archive.r00", "archive", 2, KindVolume},
		{"archive.r01", "archive", 3, KindVolume},
		{"bundle.z01", "bundle", 2, KindVolume},
		{"single.zip", "single", 0, KindSingle},
		{"single.rar", "single", 0, KindSingle},
		{"release.tar.gz", "release", 0, KindSingle},
		{"notes.txt", "", 0, KindUnknown},
		{"report.2023", "", 0, KindUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := Detect(tc.name)
			assert.Equal(t, tc.kind, p.Kind)
			assert.Equal(t, tc.base, p.Base)
			assert.Equal(t, tc.ordinal, p.Ordinal)
		})
	}
}

func TestIsFirstPart(t *testing.T) {
	assert.True(t, IsFirstPart("game.part1.rar"))
	assert.True(t, IsFirstPart("backup.7z.001"))
	assert.True(t, IsFirstPart("single.zip"))
	assert.False(t, IsFirstPart("game.part2.rar"))
	assert.False(t, IsFirstPart("notes.txt"))
}

func TestIsNumericVolume(t *testing.T) {
	assert.True(t, IsNumericVolume("backup.7z.001"))
	assert.True(t, IsNumericVolume("backup.7z.014"))
	assert.False(t, IsNumericVolume("game.part1.rar"))
	assert.False(t, IsNumericVolume("single.zip"))
}

func TestScanGroupsAndOrders(t *testing.T) {
	dir := t.TempDir()
	names := []string{"game.part2.rar", "game.part1.rar", "game.part3.rar", "other.zip", "notes.txt"}
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	sets, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, sets, 2)

	var game, other *Set
	for i := range sets {
		switch sets[i].Base {
		case "game":
			game = &sets[i]
		case "other":
			other = &sets[i]
		}
	}
	require.NotNil(t, game)
	require.NotNil(t, other)

	require.Len(t, game.Parts, 3)
	assert.Equal(t, "game.part1.rar", game.Parts[0].Name)
	assert.Equal(t, "game.part3.rar", game.Parts[2].Name)
	assert.Empty(t, game.MissingOrdinals())

	first, ok := game.First()
	require.True(t, ok)
	assert.Equal(t, "game.part1.rar", first.Name)

	require.Len(t, other.Parts, 1)
	assert.Equal(t, KindSingle, other.Parts[0].Kind)
}

func TestScanPromotesRarFirstVolume(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"archive.rar", "archive.r00", "archive.r01"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	sets, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	require.Len(t, sets[0].Parts, 3)
	assert.Equal(t, "archive.rar", sets[0].Parts[0].Name)
	assert.Equal(t, KindFirst, sets[0].Parts[0].Kind)
	assert.Empty(t, sets[0].MissingOrdinals())
}

func TestScanSeparatesArchivesSharingBaseName(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"backup.zip", "backup.7z.001", "backup.7z.002"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	sets, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, sets, 2)

	var volumes, single *Set
	for i := range sets {
		if IsNumericVolume(sets[i].Parts[0].Name) {
			volumes = &sets[i]
		} else {
			single = &sets[i]
		}
	}
	require.NotNil(t, volumes)
	require.NotNil(t, single)

	require.Len(t, volumes.Parts, 2)
	assert.Equal(t, "backup.7z.001", volumes.Parts[0].Name)
	assert.Equal(t, "backup.7z.002", volumes.Parts[1].Name)

	require.Len(t, single.Parts, 1)
	assert.Equal(t, "backup.zip", single.Parts[0].Name)
	assert.Equal(t, KindSingle, single.Parts[0].Kind)
}

func TestScanKeepsForeignSingleOutOfVolumeSet(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"bundle.zip", "bundle.r00", "bundle.r01"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	sets, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, sets, 2)
	for i := range sets {
		for _, p := range sets[i].Parts {
			if p.Name == "bundle.zip" {
				assert.Equal(t, KindSingle, p.Kind)
				assert.Len(t, sets[i].Parts, 1)
			}
		}
	}
}

func TestMissingOrdinals(t *testing.T) {
	set := Set{
		Base: "game",
		Parts: []Part{
			{Name: "game.part1.rar", Ordinal: 1, Kind: KindFirst},
			{Name: "game.part4.rar", Ordinal: 4, Kind: KindVolume},
		},
	}
	assert.Equal(t, []int{2, 3}, set.MissingOrdinals())
}

func TestInferFilename(t *testing.T) {
	assert.Equal(t, "game.part1.rar", InferFilename("https://host/dl/game.part1.rar"))
	assert.Equal(t, "my file.zip", InferFilename("https://host/dl/my%20file.zip"))
	assert.Equal(t, "download.bin", InferFilename("https://host/"))
	assert.Equal(t, "key.7z.001", InferFilename("s3://bucket/prefix/key.7z.001"))
}

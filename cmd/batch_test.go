package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/easyparts/easyparts/internal/utils"
)

func TestNormalizeJobType(t *testing.T) {
	assert.Equal(t, "http", normalizeJobType("http"))
	assert.Equal(t, "http", normalizeJobType("HTTPS"))
	assert.Equal(t, "s3", normalizeJobType("s3"))
	assert.Equal(t, "", normalizeJobType("torrent"))
}

func TestBuildJobsFromBatch(t *testing.T) {
	raw := `
https:
  - op: downloads/movie.part1.rar
    link: https://host.example/movie.part1.rar
  - op: downloads/movie.part2.rar
    link: https://host.example/movie.part2.rar
  - link: ""
s3:
  - link: s3://bucket/backups/archive.7z.001
torrent:
  - link: magnet:?xt=whatever
`
	var batchFile BatchFile
	require.NoError(t, yaml.Unmarshal([]byte(raw), &batchFile))

	jobs := buildJobsFromBatch(batchFile)
	require.Len(t, jobs, 3)

	byURL := make(map[string]utils.Job)
	for _, job := range jobs {
		byURL[job.URL] = job
	}

	first := byURL["https://host.example/movie.part1.rar"]
	assert.Equal(t, "http", first.JobType)
	assert.Equal(t, "downloads/movie.part1.rar", first.OutputPath)
	assert.Equal(t, "progress", first.ProgressType)
	assert.NotNil(t, first.Metadata)

	s3Job := byURL["s3://bucket/backups/archive.7z.001"]
	assert.Equal(t, "s3", s3Job.JobType)
	assert.Equal(t, "default", s3Job.Metadata["profile"])
}
